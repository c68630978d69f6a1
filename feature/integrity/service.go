package integrity

import (
	"context"
	"errors"

	"food-index/core/storage"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/repository"
	"food-index/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageUnavailable is returned by storage checks when no client is configured.
var ErrStorageUnavailable = errors.New("storage is not configured")

// Catalog is the food data the checks read.
type Catalog interface {
	FoodCodes(ctx context.Context) ([]string, error)
	Defaults(ctx context.Context) (*attributes.InheritableAttributes, error)
}

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	cfg     storage.Config
	db      *gorm.DB
	catalog Catalog
	logger  *zap.Logger
}

// NewService creates a new integrity service. client may be nil.
func NewService(client storage.Client, cfg storage.Config, db *gorm.DB, catalog Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		cfg:     cfg,
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// CheckStorage checks the thumbnail bucket and folder.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageUnavailable
	}
	return checks.CheckStorage(ctx, s.client, s.cfg.Bucket, s.cfg.ThumbnailPrefix)
}

// FixStorage creates the thumbnail folder.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return ErrStorageUnavailable
	}
	return checks.FixStorage(ctx, s.client, s.cfg.Bucket, s.cfg.ThumbnailPrefix, s.logger)
}

// CheckThumbnails compares the food codes with the stored thumbnails.
func (s *Service) CheckThumbnails(ctx context.Context) (*checks.ThumbnailReport, error) {
	if s.client == nil {
		return nil, ErrStorageUnavailable
	}
	codes, err := s.catalog.FoodCodes(ctx)
	if err != nil {
		return nil, err
	}
	return checks.CheckThumbnails(ctx, s.client, s.cfg.Bucket, s.cfg.ThumbnailPrefix, codes)
}

// CheckSchema verifies the tables the index reads.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, repository.ExpectedSchema())
}

// CheckDefaults verifies the attribute defaults row.
func (s *Service) CheckDefaults(ctx context.Context) (*checks.DefaultsReport, error) {
	return checks.CheckDefaults(ctx, s.catalog)
}
