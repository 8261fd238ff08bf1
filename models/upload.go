package models

// UploadedFile describes a stored photo.
type UploadedFile struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
