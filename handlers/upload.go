package handlers

import (
	"io"
	"net/http"

	"jamb/services/storage"
	"jamb/utils"

	"github.com/gin-gonic/gin"
)

// UploadHandler stores photos for orders and recommendations.
type UploadHandler struct {
	Uploader *storage.PhotoUploader
}

func NewUploadHandler(uploader *storage.PhotoUploader) *UploadHandler {
	return &UploadHandler{Uploader: uploader}
}

// readFiles reads every file of a multipart field, refusing more than maxFiles files or
// any file over maxBytes.
func readFiles(c *gin.Context, field string, maxFiles int, maxBytes int64) ([]storage.Photo, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, utils.NewValidationError("a multipart form with %q files is required", field)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, utils.NewValidationError("no %q files provided", field)
	}
	if len(headers) > maxFiles {
		return nil, utils.NewValidationError("at most %d files can be uploaded at once", maxFiles)
	}

	files := make([]storage.Photo, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxBytes {
			return nil, utils.NewValidationError("file %q exceeds %d MB", fh.Filename, maxBytes>>20)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, utils.NewValidationError("file %q could not be read", fh.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		f.Close()
		if err != nil {
			return nil, utils.NewValidationError("file %q could not be read", fh.Filename)
		}
		if int64(len(data)) > maxBytes {
			return nil, utils.NewValidationError("file %q exceeds %d MB", fh.Filename, maxBytes>>20)
		}
		files = append(files, storage.Photo{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// readFile reads the single file of a multipart field.
func readFile(c *gin.Context, field string, maxBytes int64) ([]byte, error) {
	files, err := readFiles(c, field, 1, maxBytes)
	if err != nil {
		return nil, err
	}
	return files[0].Data, nil
}

// UploadPhotos handles POST /api/uploads/photos (multipart field "photos").
func (h *UploadHandler) UploadPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}
	photos, err := readFiles(c, "photos", storage.MaxPhotos, storage.MaxPhotoBytes)
	if err != nil {
		respondError(c, err, "Invalid photo upload")
		return
	}
	uploaded, err := h.Uploader.UploadPhotos(c.Request.Context(), userID, photos)
	if err != nil {
		respondError(c, err, "Failed to upload photos")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"files": uploaded})
}
