package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/pixshelf/pixshelf-api/internal/domain"
	"github.com/pixshelf/pixshelf-api/internal/pkg/id"
)

// MaxUploadFiles caps how many images one upload request may carry.
const MaxUploadFiles = 10

// urlTTL is how long a served image link stays fetchable. Every response
// presigns fresh links, so expiry only bounds a single page view.
const urlTTL = 1 * time.Hour

// Upload is one incoming image: its bytes, declared content type and an
// optional title (defaulted to "Image N" when empty).
type Upload struct {
	Title       string
	ContentType string
	Filename    string
	Data        io.Reader
}

type Service interface {
	Upload(ctx context.Context, userID string, uploads []Upload) ([]domain.Image, error)
	List(ctx context.Context, userID string) ([]domain.Image, error)
	UpdateOrder(ctx context.Context, userID string, orders []domain.ImageOrder) error
	Update(ctx context.Context, userID, imageID, title string, replacement *Upload) (*domain.Image, error)
	Delete(ctx context.Context, userID, imageID string) error
	Download(ctx context.Context, userID, imageID string) (io.ReadCloser, *domain.Image, error)
}

type imageStore interface {
	Put(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, imageID string) (*domain.Image, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Image, error)
	Update(ctx context.Context, imageID string, updates map[string]interface{}) error
	Delete(ctx context.Context, imageID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	images  imageStore
	objects objectStore
}

func NewService(images imageStore, objects objectStore) Service {
	return &service{images: images, objects: objects}
}

func (s *service) Upload(ctx context.Context, userID string, uploads []Upload) ([]domain.Image, error) {
	if len(uploads) == 0 {
		return nil, domain.E(domain.ErrBadRequest, "No files uploaded")
	}
	if len(uploads) > MaxUploadFiles {
		return nil, domain.E(domain.ErrBadRequest, fmt.Sprintf("At most %d files per upload", MaxUploadFiles))
	}

	existing, err := s.images.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	nextOrder := len(existing)

	var out []domain.Image
	for i, up := range uploads {
		title := up.Title
		if title == "" {
			title = fmt.Sprintf("Image %d", nextOrder+i+1)
		}
		imageID := id.New()
		key := objectKey(userID, imageID, up.Filename)
		if err := s.objects.Upload(ctx, key, up.Data, up.ContentType); err != nil {
			return nil, fmt.Errorf("upload image bytes: %w", err)
		}
		now := time.Now().UTC()
		img := domain.Image{
			ImageID:    imageID,
			UserID:     userID,
			Title:      title,
			ObjectKey:  key,
			Order:      nextOrder + i,
			UploadedAt: now,
			UpdatedAt:  now,
		}
		if err := s.images.Put(ctx, &img); err != nil {
			// Don't leave an orphaned object behind the failed row.
			if delErr := s.objects.Delete(ctx, key); delErr != nil {
				slog.Warn("failed to clean up object after store error", "key", key, "err", delErr)
			}
			return nil, err
		}
		if err := s.presign(ctx, &img); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// List returns the user's gallery in display order, each entry carrying
// a freshly presigned link the browser can fetch directly.
func (s *service) List(ctx context.Context, userID string) ([]domain.Image, error) {
	images, err := s.images.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		if err := s.presign(ctx, &images[i]); err != nil {
			return nil, err
		}
	}
	return images, nil
}

// UpdateOrder applies the requested gallery positions. Entries pointing
// at another user's image are rejected before any write happens.
func (s *service) UpdateOrder(ctx context.Context, userID string, orders []domain.ImageOrder) error {
	if len(orders) == 0 {
		return domain.E(domain.ErrBadRequest, "No order entries supplied")
	}
	owned := make(map[string]bool)
	images, err := s.images.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, img := range images {
		owned[img.ImageID] = true
	}
	for _, o := range orders {
		if !owned[o.ImageID] {
			return domain.E(domain.ErrNotFound, "Image not found")
		}
	}
	for _, o := range orders {
		if err := s.images.Update(ctx, o.ImageID, map[string]interface{}{"sort_order": o.Order}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Update(ctx context.Context, userID, imageID, title string, replacement *Upload) (*domain.Image, error) {
	img, err := s.getOwned(ctx, userID, imageID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if replacement != nil {
		// Re-uses the existing key, so no row field changes for the bytes.
		if err := s.objects.Upload(ctx, img.ObjectKey, replacement.Data, replacement.ContentType); err != nil {
			return nil, fmt.Errorf("replace image bytes: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := s.images.Update(ctx, imageID, updates); err != nil {
			return nil, err
		}
	}
	updated, err := s.images.Get(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if err := s.presign(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, userID, imageID string) error {
	img, err := s.getOwned(ctx, userID, imageID)
	if err != nil {
		return err
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, img.ObjectKey); err != nil {
		slog.Warn("failed to delete image object", "key", img.ObjectKey, "err", err)
	}
	return nil
}

// Download streams the raw object bytes of an owned image.
func (s *service) Download(ctx context.Context, userID, imageID string) (io.ReadCloser, *domain.Image, error) {
	img, err := s.getOwned(ctx, userID, imageID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.objects.Download(ctx, img.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return rc, img, nil
}

func (s *service) presign(ctx context.Context, img *domain.Image) error {
	url, err := s.objects.PresignedURL(ctx, img.ObjectKey, urlTTL)
	if err != nil {
		return fmt.Errorf("presign image link: %w", err)
	}
	img.URL = url
	return nil
}

func (s *service) getOwned(ctx context.Context, userID, imageID string) (*domain.Image, error) {
	img, err := s.images.Get(ctx, imageID)
	if err != nil {
		return nil, domain.E(domain.ErrNotFound, "Image not found")
	}
	if img.UserID != userID {
		return nil, domain.E(domain.ErrForbidden, "Image belongs to another user")
	}
	return img, nil
}

func objectKey(userID, imageID, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("images/%s/%s%s", userID, imageID, ext)
}
