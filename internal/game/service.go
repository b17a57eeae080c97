package game

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/adilzhan/gameportal/internal/config"
	"github.com/adilzhan/gameportal/internal/events"
	"github.com/adilzhan/gameportal/internal/metrics"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// gameStore abstracts the persistence layer.
type gameStore interface {
	Create(ctx context.Context, game Game) (Game, error)
	Update(ctx context.Context, game Game) (Game, error)
	GetByID(ctx context.Context, id uuid.UUID) (Game, error)
	GetBySlug(ctx context.Context, slug string) (Game, error)
	List(ctx context.Context, filter Filter) ([]Game, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (Game, error)
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Filter narrows and pages the game listing.
type Filter struct {
	Search   string
	Category string
	Size     Size
	Page     int
	PerPage  int
}

// ValidationError carries the per-field problem map for an invalid record.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return ErrInvalidGame.Error() }

// Unwrap lets callers match with errors.Is(err, ErrInvalidGame).
func (e *ValidationError) Unwrap() error { return ErrInvalidGame }

// Service manages game records and their stored assets.
type Service struct {
	repo         gameStore
	objectStore  objectStore
	objectBucket string
	rules        map[Slot]SlotConstraints
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewService constructs a game service.
func NewService(repo gameStore, store objectStore, objectBucket string, cfg config.UploadConfig, publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		objectStore:  store,
		objectBucket: objectBucket,
		rules:        SlotRules(cfg),
		publisher:    publisher,
		logger:       logger,
	}
}

// UploadAssets validates and stores the provided slot binaries. The archive
// slot is unpacked into its play folder; the other slots are stored under
// their canonical prefixes. All slots are optional here so the edit flow can
// replace a single asset.
func (s *Service) UploadAssets(ctx context.Context, files map[Slot]*multipart.FileHeader) (map[Slot]UploadedAsset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", ErrUnknownSlot)
	}

	results := make(map[Slot]UploadedAsset, len(files))
	for slot, header := range files {
		rules, ok := s.rules[slot]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
		}
		if header == nil {
			continue
		}
		if err := rules.CheckFile(header); err != nil {
			metrics.AssetUploadFailures.WithLabelValues(string(slot)).Inc()
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}

		var (
			asset UploadedAsset
			err   error
		)
		if slot == SlotArchive {
			asset, err = s.storeArchive(ctx, header)
		} else {
			asset, err = s.storeBinary(ctx, slot, header)
		}
		if err != nil {
			metrics.AssetUploadFailures.WithLabelValues(string(slot)).Inc()
			return nil, err
		}

		metrics.AssetUploads.WithLabelValues(string(slot)).Inc()
		results[slot] = asset
	}

	return results, nil
}

// Create validates and persists a new game record.
func (s *Service) Create(ctx context.Context, input MetadataInput) (Game, error) {
	if problems := ValidateMetadata(input, true); len(problems) > 0 {
		return Game{}, &ValidationError{Fields: problems}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	game := Game{
		ID:            uuid.New(),
		Slug:          assetpath.Slugify(input.Name),
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Categories:    NormalizeCategories(input.Categories),
		Size:          input.Size,
		ThumbnailPath: input.ThumbnailPath,
		IconPath:      input.IconPath,
		PreviewPath:   input.PreviewPath,
		PlayPath:      input.PlayPath,
		Active:        active,
	}

	stored, err := s.repo.Create(ctx, game)
	if err != nil {
		return Game{}, err
	}

	s.notifyChange(ctx, stored, "created")
	return stored, nil
}

// UpdateInput carries partial mutations; nil fields are left unchanged.
type UpdateInput struct {
	Name          *string
	Description   *string
	Categories    *[]string
	Size          *Size
	ThumbnailPath *string
	IconPath      *string
	PreviewPath   *string
	PlayPath      *string
	Active        *bool
}

// Update applies the provided mutations to an existing record. Only the
// fields the caller explicitly set are touched; the slug follows the name.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Game, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Game{}, err
	}

	if input.Name != nil {
		game.Name = strings.TrimSpace(*input.Name)
		game.Slug = assetpath.Slugify(game.Name)
	}
	if input.Description != nil {
		game.Description = strings.TrimSpace(*input.Description)
	}
	if input.Categories != nil {
		game.Categories = NormalizeCategories(*input.Categories)
	}
	if input.Size != nil {
		game.Size = *input.Size
	}
	if input.ThumbnailPath != nil {
		game.ThumbnailPath = *input.ThumbnailPath
	}
	if input.IconPath != nil {
		game.IconPath = *input.IconPath
	}
	if input.PreviewPath != nil {
		game.PreviewPath = *input.PreviewPath
	}
	if input.PlayPath != nil {
		game.PlayPath = *input.PlayPath
	}
	if input.Active != nil {
		game.Active = *input.Active
	}

	problems := ValidateMetadata(MetadataInput{
		Name:          game.Name,
		Description:   game.Description,
		Categories:    game.Categories,
		Size:          game.Size,
		ThumbnailPath: game.ThumbnailPath,
		IconPath:      game.IconPath,
		PreviewPath:   game.PreviewPath,
		PlayPath:      game.PlayPath,
	}, false)
	if len(problems) > 0 {
		return Game{}, &ValidationError{Fields: problems}
	}

	updated, err := s.repo.Update(ctx, game)
	if err != nil {
		return Game{}, err
	}

	s.notifyChange(ctx, updated, "updated")
	return updated, nil
}

// List returns games matching the filter plus the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter) ([]Game, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	return s.repo.List(ctx, filter)
}

// GetBySlug fetches a single game by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Game, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Delete removes the record and all of its stored assets.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	game, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, objectName := range []string{game.ThumbnailPath, game.IconPath, game.PreviewPath} {
		if objectName == "" {
			continue
		}
		if err := s.objectStore.RemoveObject(ctx, s.objectBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("remove asset object", zap.String("object", objectName), zap.Error(err))
		}
	}

	if game.PlayPath != "" {
		s.removePrefix(ctx, strings.TrimSuffix(game.PlayPath, "/")+"/")
	}

	s.notifyChange(ctx, game, "deleted")
	return nil
}

// WithURLs decorates a record with fully qualified display URLs.
func WithURLs(resolver *assetpath.Resolver, g Game) View {
	return View{
		Game:         g,
		ThumbnailURL: resolver.Resolve(g.ThumbnailPath, assetpath.AssetThumbnail, ""),
		IconURL:      resolver.Resolve(g.IconPath, assetpath.AssetIcon, ""),
		PreviewURL:   resolver.Resolve(g.PreviewPath, assetpath.AssetGIF, ""),
		PlayURL:      resolver.Resolve(g.PlayPath, assetpath.AssetGame, ""),
	}
}

func (s *Service) storeBinary(ctx context.Context, slot Slot, header *multipart.FileHeader) (UploadedAsset, error) {
	file, err := header.Open()
	if err != nil {
		return UploadedAsset{}, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	objectName := assetpath.StoragePath(slotAssetType(slot), uniqueName(header.Filename))
	putOpts := minio.PutObjectOptions{ContentType: detectContentType(header)}

	if _, err := s.objectStore.PutObject(ctx, s.objectBucket, objectName, file, header.Size, putOpts); err != nil {
		return UploadedAsset{}, fmt.Errorf("store object: %w", err)
	}

	return UploadedAsset{
		Path:         objectName,
		OriginalName: sanitizeFilename(header.Filename),
	}, nil
}

// storeArchive unpacks the game zip into its play folder so the entry point
// can be served straight from the object store.
func (s *Service) storeArchive(ctx context.Context, header *multipart.FileHeader) (UploadedAsset, error) {
	file, err := header.Open()
	if err != nil {
		return UploadedAsset{}, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	reader, err := zip.NewReader(file, header.Size)
	if err != nil {
		return UploadedAsset{}, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	folder := assetpath.PlayFolder(sanitizeFilename(header.Filename))
	playPath := assetpath.StoragePath(assetpath.AssetGame, folder)

	stored := 0
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(entry.Name)
		if name == "." || strings.HasPrefix(name, "..") || path.IsAbs(name) {
			continue
		}

		src, err := entry.Open()
		if err != nil {
			return UploadedAsset{}, fmt.Errorf("%w: open entry %s: %v", ErrBadArchive, entry.Name, err)
		}

		objectName := playPath + "/" + name
		_, err = s.objectStore.PutObject(ctx, s.objectBucket, objectName, src, int64(entry.UncompressedSize64), minio.PutObjectOptions{})
		src.Close()
		if err != nil {
			return UploadedAsset{}, fmt.Errorf("store archive entry %s: %w", name, err)
		}
		stored++
	}

	if stored == 0 {
		return UploadedAsset{}, fmt.Errorf("%w: archive has no files", ErrBadArchive)
	}

	return UploadedAsset{
		Path:         playPath,
		OriginalName: sanitizeFilename(header.Filename),
	}, nil
}

func (s *Service) removePrefix(ctx context.Context, prefix string) {
	objects := s.objectStore.ListObjects(ctx, s.objectBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			s.logger.Warn("list play folder", zap.String("prefix", prefix), zap.Error(object.Err))
			continue
		}
		if err := s.objectStore.RemoveObject(ctx, s.objectBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("remove play object", zap.String("object", object.Key), zap.Error(err))
		}
	}
}

func (s *Service) notifyChange(ctx context.Context, game Game, action string) {
	if s.publisher == nil {
		return
	}

	paths := make([]string, 0, 4)
	for _, p := range []string{game.ThumbnailPath, game.IconPath, game.PreviewPath, game.PlayPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}

	err := s.publisher.Publish(ctx, events.AssetChange{
		Entity:   "game",
		EntityID: game.ID.String(),
		Action:   action,
		Paths:    paths,
	})
	if err != nil {
		s.logger.Warn("publish asset change", zap.String("game", game.Slug), zap.Error(err))
	}
}

func slotAssetType(slot Slot) assetpath.AssetType {
	switch slot {
	case SlotThumbnail:
		return assetpath.AssetThumbnail
	case SlotPreview:
		return assetpath.AssetGIF
	case SlotArchive:
		return assetpath.AssetGame
	default:
		return assetpath.AssetIcon
	}
}

func uniqueName(filename string) string {
	return uuid.NewString()[:8] + "-" + sanitizeFilename(filename)
}

func detectContentType(header *multipart.FileHeader) string {
	if contentType := header.Header.Get("Content-Type"); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}
