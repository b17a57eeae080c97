package banner

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/adilzhan/gameportal/internal/events"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const maxImageBytes = 5 << 20

type bannerStore interface {
	Create(ctx context.Context, banner Banner) (Banner, error)
	Update(ctx context.Context, banner Banner) (Banner, error)
	Get(ctx context.Context, id uuid.UUID) (Banner, error)
	List(ctx context.Context, activeOnly bool) ([]Banner, error)
	Delete(ctx context.Context, id uuid.UUID) (Banner, error)
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Service manages banner records and their images.
type Service struct {
	repo         bannerStore
	objectStore  objectStore
	objectBucket string
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewService constructs a banner service.
func NewService(repo bannerStore, store objectStore, objectBucket string, publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		objectStore:  store,
		objectBucket: objectBucket,
		publisher:    publisher,
		logger:       logger,
	}
}

// Input carries banner fields for create and update.
type Input struct {
	Label     string
	TargetURL string
	Position  int
	Active    *bool
	Image     *multipart.FileHeader
}

// Create stores the image (if any) and persists the banner.
func (s *Service) Create(ctx context.Context, input Input) (Banner, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return Banner{}, fmt.Errorf("%w: label is required", ErrInvalidBanner)
	}
	if input.Image == nil {
		return Banner{}, fmt.Errorf("%w: image is required", ErrInvalidBanner)
	}

	imagePath, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return Banner{}, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	banner := Banner{
		ID:        uuid.New(),
		Label:     label,
		ImagePath: imagePath,
		TargetURL: strings.TrimSpace(input.TargetURL),
		Active:    active,
		Position:  input.Position,
	}

	stored, err := s.repo.Create(ctx, banner)
	if err != nil {
		return Banner{}, err
	}

	s.notifyChange(ctx, stored, "created")
	return stored, nil
}

// Update applies the provided fields; a new image replaces the stored one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (Banner, error) {
	banner, err := s.repo.Get(ctx, id)
	if err != nil {
		return Banner{}, err
	}

	if label := strings.TrimSpace(input.Label); label != "" {
		banner.Label = label
	}
	if target := strings.TrimSpace(input.TargetURL); target != "" {
		banner.TargetURL = target
	}
	if input.Position != 0 {
		banner.Position = input.Position
	}
	if input.Active != nil {
		banner.Active = *input.Active
	}
	if input.Image != nil {
		oldPath := banner.ImagePath
		banner.ImagePath, err = s.storeImage(ctx, input.Image)
		if err != nil {
			return Banner{}, err
		}
		if oldPath != "" {
			if err := s.objectStore.RemoveObject(ctx, s.objectBucket, oldPath, minio.RemoveObjectOptions{}); err != nil {
				s.logger.Warn("remove replaced banner image", zap.String("object", oldPath), zap.Error(err))
			}
		}
	}

	updated, err := s.repo.Update(ctx, banner)
	if err != nil {
		return Banner{}, err
	}

	s.notifyChange(ctx, updated, "updated")
	return updated, nil
}

// SetActive flips the visibility flag, returning the updated record.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (Banner, error) {
	banner, err := s.repo.Get(ctx, id)
	if err != nil {
		return Banner{}, err
	}

	banner.Active = active
	updated, err := s.repo.Update(ctx, banner)
	if err != nil {
		return Banner{}, err
	}

	s.notifyChange(ctx, updated, "toggled")
	return updated, nil
}

// List returns banners, optionally restricted to active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Banner, error) {
	return s.repo.List(ctx, activeOnly)
}

// Delete removes the banner and its stored image.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	banner, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if banner.ImagePath != "" {
		if err := s.objectStore.RemoveObject(ctx, s.objectBucket, banner.ImagePath, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("remove banner image", zap.String("object", banner.ImagePath), zap.Error(err))
		}
	}

	s.notifyChange(ctx, banner, "deleted")
	return nil
}

// WithURL decorates a banner with its display URL.
func WithURL(resolver *assetpath.Resolver, b Banner) View {
	return View{
		Banner:   b,
		ImageURL: resolver.Resolve(b.ImagePath, assetpath.AssetImage, ""),
	}
}

func (s *Service) storeImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header.Size > maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidBanner, int64(maxImageBytes))
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open banner image: %w", err)
	}
	defer file.Close()

	name := strings.TrimSpace(path.Base(header.Filename))
	if name == "" || name == "." {
		name = "banner"
	}
	objectName := assetpath.StoragePath(assetpath.AssetImage, "banners/"+uuid.NewString()[:8]+"-"+name)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.objectStore.PutObject(ctx, s.objectBucket, objectName, file, header.Size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("store banner image: %w", err)
	}

	return objectName, nil
}

func (s *Service) notifyChange(ctx context.Context, banner Banner, action string) {
	if s.publisher == nil {
		return
	}

	var paths []string
	if banner.ImagePath != "" {
		paths = append(paths, banner.ImagePath)
	}

	err := s.publisher.Publish(ctx, events.AssetChange{
		Entity:   "banner",
		EntityID: banner.ID.String(),
		Action:   action,
		Paths:    paths,
	})
	if err != nil {
		s.logger.Warn("publish banner change", zap.String("banner", banner.Label), zap.Error(err))
	}
}
