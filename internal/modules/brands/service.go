package brands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paylink.dev/app/internal/shared/slug"
	"paylink.dev/app/internal/storage"
)

const MaxLogoSize = 2 << 20

var (
	ErrBrandNotFound = errors.New("brand not found")
	ErrNameRequired  = errors.New("brand name is required")
	ErrLogoTooLarge  = errors.New("logo exceeds 2MB")
)

type Input struct {
	Name        string
	LogoURL     string
	Description string
	Email       string
}

type LogoUpload struct {
	BrandName    string
	OriginalName string
	Size         int64
	Body         io.Reader
}

type LogoResult struct {
	LogoURL      string `json:"logoUrl"`
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
}

type Service struct {
	db     *gorm.DB
	store  storage.Storage
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, store storage.Storage) *Service {
	return &Service{db: db, store: store, logger: slog.Default(), now: time.Now}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *Service) Create(ctx context.Context, in Input) (*Brand, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}
	b := &Brand{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		LogoURL:     in.LogoURL,
		Description: in.Description,
		Email:       strings.TrimSpace(in.Email),
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	s.logger.InfoContext(ctx, "brand created", "brand_id", b.ID, "name", b.Name)
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]Brand, error) {
	var out []Brand
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Brand, error) {
	var b Brand
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &b, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Brand, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}
	res := s.db.WithContext(ctx).Model(&Brand{}).Where("id = ?", id).Updates(map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"logo_url":    in.LogoURL,
		"description": in.Description,
		"email":       strings.TrimSpace(in.Email),
		"updated_at":  s.now().UTC(),
	})
	if res.Error != nil {
		return nil, fmt.Errorf("update brand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrBrandNotFound
	}
	return s.Get(ctx, id)
}

// UploadLogo stores an image as <brand-slug>-<unix-ms><ext>.
func (s *Service) UploadLogo(ctx context.Context, up LogoUpload) (LogoResult, error) {
	ext, err := storage.ImageExt(up.OriginalName)
	if err != nil {
		return LogoResult{}, err
	}
	if up.Size > MaxLogoSize {
		return LogoResult{}, ErrLogoTooLarge
	}

	key := fmt.Sprintf("%s-%d%s", slug.FromName(up.BrandName), s.now().UnixMilli(), ext)
	res, err := s.store.Put(ctx, io.LimitReader(up.Body, MaxLogoSize+1), storage.PutInput{
		Key:         key,
		Filename:    up.OriginalName,
		ContentType: storage.ContentTypeFor(ext),
		Size:        up.Size,
	})
	if err != nil {
		return LogoResult{}, fmt.Errorf("store logo: %w", err)
	}

	s.logger.InfoContext(ctx, "brand logo uploaded", "key", res.Key, "size", up.Size)
	return LogoResult{LogoURL: res.URL, Key: res.Key, OriginalName: up.OriginalName}, nil
}
