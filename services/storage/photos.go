package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"jamb/models"
	"jamb/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxPhotos      = 10
	MaxPhotoBytes  = 10 << 20
	uploadParallel = 4
)

// Photo is an uploaded image before compression.
type Photo struct {
	Name string
	Data []byte
}

// PhotoUploader validates, compresses and stores photos in parallel.
type PhotoUploader struct {
	Storage StorageService
	// Folder is the object prefix, e.g. "photos".
	Folder string
	NewID  func() string
	Now    func() time.Time
}

// NewPhotoUploader returns an uploader storing under folder.
func NewPhotoUploader(backend StorageService, folder string) *PhotoUploader {
	return &PhotoUploader{Storage: backend, Folder: folder}
}

// DetectImageType returns the content type of a supported photo.
func DetectImageType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png":
		return contentType, nil
	default:
		return "", utils.NewValidationError("unsupported file type %s, only JPEG and PNG are accepted", contentType)
	}
}

// ValidatePhotos checks count, size and type before anything is uploaded.
func ValidatePhotos(photos []Photo) error {
	if len(photos) == 0 {
		return utils.NewValidationError("at least one photo is required")
	}
	if len(photos) > MaxPhotos {
		return utils.NewValidationError("at most %d photos can be uploaded at once", MaxPhotos)
	}
	for _, p := range photos {
		if len(p.Data) == 0 {
			return utils.NewValidationError("photo %q is empty", p.Name)
		}
		if len(p.Data) > MaxPhotoBytes {
			return utils.NewValidationError("photo %q exceeds %d MB", p.Name, MaxPhotoBytes>>20)
		}
		if _, err := DetectImageType(p.Data); err != nil {
			return err
		}
		if err := CheckDimensions(p.Data); err != nil {
			return utils.NewValidationError("photo %q is not accepted: %v", p.Name, err)
		}
	}
	return nil
}

// UploadPhotos stores every photo under the owner's folder, preserving input order.
// When any photo fails, the ones already stored are removed.
func (u *PhotoUploader) UploadPhotos(ctx context.Context, ownerID string, photos []Photo) ([]models.UploadedFile, error) {
	if err := ValidatePhotos(photos); err != nil {
		return nil, err
	}
	newID := u.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	day := now().UTC().Format("2006/01/02")

	results := make([]models.UploadedFile, len(photos))
	stored := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallel)
	for i, p := range photos {
		objectPath := path.Join(u.Folder, ownerID, day, newID()+".jpg")
		g.Go(func() error {
			compressed, err := CompressImage(p.Data, MaxImageSide, JPEGQuality)
			if err != nil {
				return utils.NewValidationError("photo %q could not be read: %v", p.Name, err)
			}
			url, err := u.Storage.Upload(gctx, objectPath, "image/jpeg", compressed)
			if err != nil {
				return utils.NewUpstreamError(fmt.Sprintf("failed to store photo %q", p.Name), err)
			}
			results[i] = models.UploadedFile{
				Name:        p.Name,
				URL:         url,
				ContentType: "image/jpeg",
				Size:        int64(len(compressed)),
			}
			stored[i] = objectPath
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.removeStored(ctx, stored)
		return nil, err
	}
	return results, nil
}

// removeStored deletes a partially uploaded batch. Failures are only logged.
func (u *PhotoUploader) removeStored(ctx context.Context, objectPaths []string) {
	for _, objectPath := range objectPaths {
		if objectPath == "" {
			continue
		}
		if err := u.Storage.Delete(ctx, objectPath); err != nil {
			utils.GetLogger().Warn("Failed to remove orphaned photo", zap.String("object", objectPath), zap.Error(err))
		}
	}
}
