package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"math"
	"strconv"
	texttemplate "text/template"

	"jamb/models"
)

//go:embed templates/*
var templateFS embed.FS

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// EmailService builds order e-mails.
type EmailService interface {
	OrderConfirmation(order *models.CompositeOrder, user *models.User) (models.EmailMessage, error)
	OrderUpdated(order *models.CompositeOrder, user *models.User) (models.EmailMessage, error)
	Render(kind models.OrderEmailKind, order *models.CompositeOrder, user *models.User) (models.EmailMessage, error)
}

// DefaultEmailService renders the embedded templates.
type DefaultEmailService struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

func qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64) + "%"
}

func coef(c float64) string {
	return "x" + strconv.FormatFloat(c, 'f', 2, 64)
}

func adjustmentLabel(v float64) string {
	if v < 0 {
		return "Date discount"
	}
	return "Date surcharge"
}

var funcs = map[string]any{
	"money":           money,
	"qty":             qty,
	"percent":         percent,
	"coef":            coef,
	"adjustmentLabel": adjustmentLabel,
}

// NewEmailService parses the embedded templates.
func NewEmailService() (*DefaultEmailService, error) {
	html, err := htmltemplate.New("order.html").Funcs(funcs).ParseFS(templateFS, "templates/order.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}
	text, err := texttemplate.New("order.txt").Funcs(funcs).ParseFS(templateFS, "templates/order.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	return &DefaultEmailService{html: html, text: text}, nil
}

type orderView struct {
	Headline string
	Intro    string
	Name     string
	Order    *models.CompositeOrder
}

func (s *DefaultEmailService) OrderConfirmation(order *models.CompositeOrder, user *models.User) (models.EmailMessage, error) {
	return s.Render(models.EmailOrderConfirmation, order, user)
}

func (s *DefaultEmailService) OrderUpdated(order *models.CompositeOrder, user *models.User) (models.EmailMessage, error) {
	return s.Render(models.EmailOrderUpdated, order, user)
}

func (s *DefaultEmailService) Render(kind models.OrderEmailKind, order *models.CompositeOrder, user *models.User) (models.EmailMessage, error) {
	if order == nil || user == nil {
		return models.EmailMessage{}, fmt.Errorf("order and user are required")
	}
	if user.Email == "" {
		return models.EmailMessage{}, fmt.Errorf("user %s has no email address", user.ID)
	}

	view := orderView{Name: user.Name, Order: order}
	var subject string
	switch kind {
	case models.EmailOrderConfirmation:
		subject = fmt.Sprintf("Your Jamb order %s is confirmed", order.Code)
		view.Headline = "Thanks for your order!"
		view.Intro = "We have received your order. Here is what you booked:"
	case models.EmailOrderUpdated:
		subject = fmt.Sprintf("Your Jamb order %s was updated", order.Code)
		view.Headline = "Your order was updated"
		view.Intro = fmt.Sprintf("Your order is now %s. Here are the current details:", humanStatus(order.Status))
	default:
		return models.EmailMessage{}, fmt.Errorf("unknown email kind %q", kind)
	}
	if view.Name == "" {
		view.Name = "there"
	}

	var html, text bytes.Buffer
	if err := s.html.Execute(&html, view); err != nil {
		return models.EmailMessage{}, fmt.Errorf("failed to render html email: %w", err)
	}
	if err := s.text.Execute(&text, view); err != nil {
		return models.EmailMessage{}, fmt.Errorf("failed to render text email: %w", err)
	}
	return models.EmailMessage{
		To:      user.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func humanStatus(status models.OrderStatus) string {
	switch status {
	case models.OrderInProgress:
		return "in progress"
	case "":
		return "pending"
	default:
		return string(status)
	}
}
