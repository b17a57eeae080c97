package game

import (
	"archive/zip"
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

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/adilzhan/gameportal/internal/config"
	"github.com/adilzhan/gameportal/internal/events"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxIconBytes:      1 << 20,
		MaxThumbnailBytes: 5 << 20,
		MaxPreviewBytes:   20 << 20,
		MaxArchiveBytes:   100 << 20,
	}
}

type fakeRepo struct {
	records map[uuid.UUID]Game
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[uuid.UUID]Game{}}
}

func (f *fakeRepo) Create(_ context.Context, game Game) (Game, error) {
	for _, existing := range f.records {
		if existing.Slug == game.Slug {
			return Game{}, ErrSlugExists
		}
	}
	game.CreatedAt = time.Now()
	game.UpdatedAt = game.CreatedAt
	f.records[game.ID] = game
	return game, nil
}

func (f *fakeRepo) Update(_ context.Context, game Game) (Game, error) {
	if _, ok := f.records[game.ID]; !ok {
		return Game{}, ErrGameNotFound
	}
	game.UpdatedAt = time.Now()
	f.records[game.ID] = game
	return game, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (Game, error) {
	game, ok := f.records[id]
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return game, nil
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (Game, error) {
	for _, game := range f.records {
		if game.Slug == slug {
			return game, nil
		}
	}
	return Game{}, ErrGameNotFound
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]Game, int64, error) {
	var out []Game
	for _, game := range f.records {
		out = append(out, game)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (Game, error) {
	game, ok := f.records[id]
	if !ok {
		return Game{}, ErrGameNotFound
	}
	delete(f.records, id)
	return game, nil
}

type fakeObjectStore struct {
	objects map[string][]byte
	removed []string
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
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, objectName)
	f.removed = append(f.removed, objectName)
	return nil
}

func (f *fakeObjectStore) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		for key := range f.objects {
			if strings.HasPrefix(key, opts.Prefix) {
				ch <- minio.ObjectInfo{Key: key}
			}
		}
	}()
	return ch
}

type recordingPublisher struct {
	changes []events.AssetChange
}

func (r *recordingPublisher) Publish(_ context.Context, change events.AssetChange) error {
	r.changes = append(r.changes, change)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func newTestService(repo *fakeRepo, store *fakeObjectStore, publisher events.Publisher) *Service {
	return NewService(repo, store, "portal-assets", testUploadConfig(), publisher, nil)
}

func buildFileHeader(t *testing.T, field, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	partHeader := make(map[string][]string)
	partHeader["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	partHeader["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	headers := req.MultipartForm.File[field]
	if len(headers) != 1 {
		t.Fatalf("expected one file header, got %d", len(headers))
	}
	return headers[0]
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUploadAssetsStoresUnderCanonicalPrefixes(t *testing.T) {
	store := newFakeObjectStore()
	service := newTestService(newFakeRepo(), store, nil)

	files := map[Slot]*multipart.FileHeader{
		SlotThumbnail: buildFileHeader(t, "thumbnail", "shot.png", "image/png", []byte("png-bytes")),
		SlotIcon:      buildFileHeader(t, "icon", "icon.png", "image/png", []byte("icon-bytes")),
		SlotPreview:   buildFileHeader(t, "gif", "preview.gif", "image/gif", []byte("gif-bytes")),
	}

	results, err := service.UploadAssets(context.Background(), files)
	if err != nil {
		t.Fatalf("UploadAssets returned error: %v", err)
	}

	if !strings.HasPrefix(results[SlotThumbnail].Path, "public/thumbnail/") {
		t.Fatalf("thumbnail stored at %q", results[SlotThumbnail].Path)
	}
	if !strings.HasPrefix(results[SlotPreview].Path, "public/gif/") {
		t.Fatalf("preview stored at %q", results[SlotPreview].Path)
	}
	if !strings.HasPrefix(results[SlotIcon].Path, "public/") || strings.HasPrefix(results[SlotIcon].Path, "public/thumbnail/") {
		t.Fatalf("icon stored at %q", results[SlotIcon].Path)
	}
	if results[SlotThumbnail].OriginalName != "shot.png" {
		t.Fatalf("unexpected original name: %s", results[SlotThumbnail].OriginalName)
	}
	if len(store.objects) != 3 {
		t.Fatalf("expected 3 stored objects, got %d", len(store.objects))
	}
}

func TestUploadAssetsUnpacksArchiveIntoPlayFolder(t *testing.T) {
	store := newFakeObjectStore()
	service := newTestService(newFakeRepo(), store, nil)

	zipData := buildZip(t, map[string]string{
		"index.html":  "<html></html>",
		"js/game.js":  "console.log('hi')",
		"css/app.css": "body{}",
	})
	files := map[Slot]*multipart.FileHeader{
		SlotArchive: buildFileHeader(t, "htmlZip", "Space-Shooter.ZIP", "application/zip", zipData),
	}

	results, err := service.UploadAssets(context.Background(), files)
	if err != nil {
		t.Fatalf("UploadAssets returned error: %v", err)
	}

	if results[SlotArchive].Path != "public/games/Space-Shooter" {
		t.Fatalf("unexpected play path: %s", results[SlotArchive].Path)
	}
	if results[SlotArchive].OriginalName != "Space-Shooter.ZIP" {
		t.Fatalf("unexpected original name: %s", results[SlotArchive].OriginalName)
	}
	if _, ok := store.objects["public/games/Space-Shooter/index.html"]; !ok {
		t.Fatalf("entry point not stored, objects: %v", keysOf(store.objects))
	}
	if _, ok := store.objects["public/games/Space-Shooter/js/game.js"]; !ok {
		t.Fatalf("nested entry not stored, objects: %v", keysOf(store.objects))
	}
}

func TestUploadAssetsRejectsOversizedIcon(t *testing.T) {
	store := newFakeObjectStore()
	cfg := testUploadConfig()
	cfg.MaxIconBytes = 8
	service := NewService(newFakeRepo(), store, "portal-assets", cfg, nil, nil)

	files := map[Slot]*multipart.FileHeader{
		SlotIcon: buildFileHeader(t, "icon", "icon.png", "image/png", []byte("way-too-many-bytes")),
	}

	_, err := service.UploadAssets(context.Background(), files)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected no stored objects, got %d", len(store.objects))
	}
}

func TestUploadAssetsRejectsWrongPreviewType(t *testing.T) {
	service := newTestService(newFakeRepo(), newFakeObjectStore(), nil)

	files := map[Slot]*multipart.FileHeader{
		SlotPreview: buildFileHeader(t, "gif", "preview.png", "image/png", []byte("png-bytes")),
	}

	_, err := service.UploadAssets(context.Background(), files)
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func validInput() MetadataInput {
	return MetadataInput{
		Name:          "Space Race",
		Description:   "Twelve chars.",
		Categories:    []string{"Arcade"},
		Size:          SizeMedium,
		ThumbnailPath: "public/thumbnail/a-shot.png",
		IconPath:      "public/a-icon.png",
		PreviewPath:   "public/gif/a-preview.gif",
		PlayPath:      "public/games/space-race",
	}
}

func TestCreateDerivesSlugAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	publisher := &recordingPublisher{}
	service := newTestService(repo, newFakeObjectStore(), publisher)

	input := validInput()
	input.Name = "Zombie Run 2!"

	game, err := service.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if game.Slug != "zombie-run-2" {
		t.Fatalf("unexpected slug: %s", game.Slug)
	}
	if len(publisher.changes) != 1 {
		t.Fatalf("expected one published change, got %d", len(publisher.changes))
	}
	if publisher.changes[0].Action != "created" || len(publisher.changes[0].Paths) != 4 {
		t.Fatalf("unexpected change event: %+v", publisher.changes[0])
	}
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	service := newTestService(newFakeRepo(), newFakeObjectStore(), nil)

	_, err := service.Create(context.Background(), MetadataInput{
		Name:        "x",
		Description: "too short",
		Size:        Size("huge"),
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "description", "categories", "size", "thumbnail", "icon", "gif", "htmlZip"} {
		if _, ok := validationErr.Fields[field]; !ok {
			t.Fatalf("expected error for field %q, got %v", field, validationErr.Fields)
		}
	}
}

func TestUpdateTouchesOnlyProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo, newFakeObjectStore(), nil)

	created, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	newThumbnail := "public/thumbnail/b-shot.png"
	updated, err := service.Update(context.Background(), created.ID, UpdateInput{ThumbnailPath: &newThumbnail})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.ThumbnailPath != newThumbnail {
		t.Fatalf("thumbnail not updated: %s", updated.ThumbnailPath)
	}
	if updated.Name != created.Name || updated.IconPath != created.IconPath {
		t.Fatalf("unchanged fields were modified: %+v", updated)
	}
}

func TestDeleteRemovesRecordAndObjects(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store, nil)

	store.objects["public/thumbnail/a-shot.png"] = []byte("x")
	store.objects["public/a-icon.png"] = []byte("x")
	store.objects["public/gif/a-preview.gif"] = []byte("x")
	store.objects["public/games/space-race/index.html"] = []byte("x")
	store.objects["public/games/space-race/js/game.js"] = []byte("x")

	created, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if len(store.objects) != 0 {
		t.Fatalf("expected all objects removed, remaining: %v", keysOf(store.objects))
	}
	if _, err := repo.GetByID(context.Background(), created.ID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected record removed, got %v", err)
	}
}

func TestWithURLsResolvesCDNPaths(t *testing.T) {
	resolver := assetpath.NewResolver("https://cdn.example.com")
	game := Game{
		ThumbnailPath: "public/thumbnail/shot.png",
		PlayPath:      "public/games/space-race",
	}

	view := WithURLs(resolver, game)
	if view.ThumbnailURL != "https://cdn.example.com/public/thumbnail/shot.png" {
		t.Fatalf("unexpected thumbnail URL: %s", view.ThumbnailURL)
	}
	if view.PlayURL != "https://cdn.example.com/public/games/space-race" {
		t.Fatalf("unexpected play URL: %s", view.PlayURL)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
