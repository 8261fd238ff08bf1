package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/utils"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDimensions rewrites the IHDR chunk of a PNG so its header claims w x h pixels.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	fail    bool
	// failOn rejects uploads whose path contains it.
	failOn string
}

func (m *memoryStorage) Upload(_ context.Context, objectPath, _ string, data []byte) (string, error) {
	if m.fail || (m.failOn != "" && strings.Contains(objectPath, m.failOn)) {
		return "", errors.New("bucket unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[objectPath] = data
	return PublicURL("jamb-photos", objectPath), nil
}

func (m *memoryStorage) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectPath)
	m.deleted = append(m.deleted, objectPath)
	return nil
}

func TestCompressImageDownscales(t *testing.T) {
	out, err := CompressImage(pngBytes(t, 400, 100), 200, JPEGQuality)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestCompressImageKeepsSmallImages(t *testing.T) {
	out, err := CompressImage(pngBytes(t, 40, 80), 200, JPEGQuality)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 80), img.Bounds())

	_, err = CompressImage([]byte("not an image"), 200, JPEGQuality)
	require.Error(t, err)
}

func TestValidatePhotos(t *testing.T) {
	good := Photo{Name: "wall.png", Data: pngBytes(t, 4, 4)}

	require.NoError(t, ValidatePhotos([]Photo{good}))

	err := ValidatePhotos(nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	tooMany := make([]Photo, MaxPhotos+1)
	for i := range tooMany {
		tooMany[i] = good
	}
	assert.Error(t, ValidatePhotos(tooMany))

	err = ValidatePhotos([]Photo{{Name: "notes.txt", Data: []byte("hello world")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only JPEG and PNG")
}

func TestOversizedImagesAreRejectedBeforeDecoding(t *testing.T) {
	huge := withDimensions(t, pngBytes(t, 4, 4), 20000, 20000)

	err := ValidatePhotos([]Photo{{Name: "huge.png", Data: huge}})
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Contains(t, err.Error(), "20000x20000")

	_, err = CompressImage(huge, MaxImageSide, JPEGQuality)
	require.Error(t, err)

	require.NoError(t, CheckDimensions(withDimensions(t, pngBytes(t, 4, 4), 8000, 5000)))
}

func TestUploadPhotosPreservesOrder(t *testing.T) {
	backend := &memoryStorage{}
	n := 0
	var mu sync.Mutex
	uploader := &PhotoUploader{
		Storage: backend,
		Folder:  "photos",
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id%d", n)
		},
		Now: func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) },
	}

	photos := []Photo{
		{Name: "a.png", Data: pngBytes(t, 10, 10)},
		{Name: "b.png", Data: pngBytes(t, 20, 10)},
		{Name: "c.png", Data: pngBytes(t, 10, 30)},
	}
	files, err := uploader.UploadPhotos(context.Background(), "u-1", photos)
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, f := range files {
		assert.Equal(t, photos[i].Name, f.Name)
		assert.Equal(t, "image/jpeg", f.ContentType)
		assert.True(t, strings.HasPrefix(f.URL, "https://storage.googleapis.com/jamb-photos/photos/u-1/2025/06/02/"))
	}
	assert.Contains(t, files[0].URL, "id1.jpg")
	assert.Len(t, backend.objects, 3)
}

func TestUploadPhotosRemovesPartialBatch(t *testing.T) {
	backend := &memoryStorage{failOn: "id2"}
	n := 0
	var mu sync.Mutex
	uploader := &PhotoUploader{
		Storage: backend,
		Folder:  "photos",
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id%d", n)
		},
	}

	photos := []Photo{
		{Name: "a.png", Data: pngBytes(t, 4, 4)},
		{Name: "b.png", Data: pngBytes(t, 4, 4)},
		{Name: "c.png", Data: pngBytes(t, 4, 4)},
	}
	_, err := uploader.UploadPhotos(context.Background(), "u-1", photos)
	require.Error(t, err)
	assert.Empty(t, backend.objects)
	assert.Len(t, backend.deleted, 2)
	for _, p := range backend.deleted {
		assert.NotContains(t, p, "id2")
	}
}

func TestUploadPhotosReportsBackendFailure(t *testing.T) {
	uploader := NewPhotoUploader(&memoryStorage{fail: true}, "photos")

	_, err := uploader.UploadPhotos(context.Background(), "u-1", []Photo{{Name: "a.png", Data: pngBytes(t, 4, 4)}})
	require.Error(t, err)
	assert.Equal(t, utils.KindUpstream, utils.KindOf(err))
}

func TestPublicURLEscapesSegments(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/photos/my%20file.jpg", PublicURL("b", "photos/my file.jpg"))
}

func TestCloudinaryPublicIDDropsExtension(t *testing.T) {
	assert.Equal(t, "photos/u-1/x", publicID("photos/u-1/x.jpg"))
}
