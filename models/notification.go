package models

// OrderEmailKind selects the template of an order e-mail.
type OrderEmailKind string

const (
	EmailOrderConfirmation OrderEmailKind = "order_confirmation"
	EmailOrderUpdated      OrderEmailKind = "order_updated"
)

// OrderEmailPayload is the queued job payload of an order e-mail.
type OrderEmailPayload struct {
	Kind    OrderEmailKind `json:"kind"`
	OrderID string         `json:"orderId"`
	UserID  string         `json:"userId"`
}

// PushPayload is the queued job payload of a push notification.
type PushPayload struct {
	UserID string            `json:"userId"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

// EmailMessage is a rendered multipart e-mail ready to be sent.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
