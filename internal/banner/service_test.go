package banner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adilzhan/gameportal/internal/events"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

type fakeBannerStore struct {
	records map[uuid.UUID]Banner
}

func newFakeBannerStore() *fakeBannerStore {
	return &fakeBannerStore{records: map[uuid.UUID]Banner{}}
}

func (f *fakeBannerStore) Create(_ context.Context, banner Banner) (Banner, error) {
	banner.CreatedAt = time.Now()
	banner.UpdatedAt = banner.CreatedAt
	f.records[banner.ID] = banner
	return banner, nil
}

func (f *fakeBannerStore) Update(_ context.Context, banner Banner) (Banner, error) {
	if _, ok := f.records[banner.ID]; !ok {
		return Banner{}, ErrBannerNotFound
	}
	banner.UpdatedAt = time.Now()
	f.records[banner.ID] = banner
	return banner, nil
}

func (f *fakeBannerStore) Get(_ context.Context, id uuid.UUID) (Banner, error) {
	banner, ok := f.records[id]
	if !ok {
		return Banner{}, ErrBannerNotFound
	}
	return banner, nil
}

func (f *fakeBannerStore) List(_ context.Context, activeOnly bool) ([]Banner, error) {
	var out []Banner
	for _, b := range f.records {
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBannerStore) Delete(_ context.Context, id uuid.UUID) (Banner, error) {
	banner, ok := f.records[id]
	if !ok {
		return Banner{}, ErrBannerNotFound
	}
	delete(f.records, id)
	return banner, nil
}

type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	return minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeObjectStore) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, objectName)
	return nil
}

type recordingPublisher struct {
	changes []events.AssetChange
}

func (r *recordingPublisher) Publish(_ context.Context, change events.AssetChange) error {
	r.changes = append(r.changes, change)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func buildImageHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestCreateStoresImageUnderPublicBanners(t *testing.T) {
	store := newFakeObjectStore()
	service := NewService(newFakeBannerStore(), store, "portal-assets", nil, nil)

	banner, err := service.Create(context.Background(), Input{
		Label: "Summer Sale",
		Image: buildImageHeader(t, "sale.png", []byte("png-bytes")),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !strings.HasPrefix(banner.ImagePath, "public/banners/") {
		t.Fatalf("image stored at %q", banner.ImagePath)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(store.objects))
	}
	if !banner.Active {
		t.Fatalf("expected new banner active by default")
	}
}

func TestCreateRequiresLabelAndImage(t *testing.T) {
	service := NewService(newFakeBannerStore(), newFakeObjectStore(), "portal-assets", nil, nil)

	if _, err := service.Create(context.Background(), Input{Image: buildImageHeader(t, "x.png", []byte("x"))}); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("expected ErrInvalidBanner for missing label, got %v", err)
	}
	if _, err := service.Create(context.Background(), Input{Label: "No Image"}); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("expected ErrInvalidBanner for missing image, got %v", err)
	}
}

func TestSetActivePublishesToggle(t *testing.T) {
	publisher := &recordingPublisher{}
	service := NewService(newFakeBannerStore(), newFakeObjectStore(), "portal-assets", publisher, nil)

	banner, err := service.Create(context.Background(), Input{
		Label: "Summer Sale",
		Image: buildImageHeader(t, "sale.png", []byte("png-bytes")),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	toggled, err := service.SetActive(context.Background(), banner.ID, false)
	if err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if toggled.Active {
		t.Fatalf("expected banner inactive")
	}

	last := publisher.changes[len(publisher.changes)-1]
	if last.Action != "toggled" || last.Entity != "banner" {
		t.Fatalf("unexpected change event: %+v", last)
	}
}

func TestDeleteRemovesImage(t *testing.T) {
	store := newFakeObjectStore()
	service := NewService(newFakeBannerStore(), store, "portal-assets", nil, nil)

	banner, err := service.Create(context.Background(), Input{
		Label: "Summer Sale",
		Image: buildImageHeader(t, "sale.png", []byte("png-bytes")),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := service.Delete(context.Background(), banner.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected image removed, %d objects remain", len(store.objects))
	}
}
