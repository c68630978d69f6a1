package foods

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-index/core/server"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/index"

	"go.uber.org/zap"
)

// widenFactor over-fetches from the index so that attribute filtering still
// leaves enough results to fill the requested limit.
const widenFactor = 2

// ErrInvalidRequest marks search requests rejected before reaching the index.
var ErrInvalidRequest = errors.New("invalid request")

// Index is the part of the index gateway the service uses.
type Index interface {
	Ready() bool
	PendingCalls() int
	Search(ctx context.Context, params index.SearchParams) (*index.SearchResults, error)
	Rebuild(ctx context.Context, localeIDs []string) error
}

// AttributeResolver resolves inheritable attributes for a batch of foods.
type AttributeResolver interface {
	GetFoodAttributes(ctx context.Context, foodIDs []string) (map[string]*attributes.InheritableAttributes, error)
}

// Thumbnailer maps food codes to thumbnail URLs. Codes without one are absent.
type Thumbnailer interface {
	URLs(ctx context.Context, codes []string) (map[string]string, error)
}

// Invalidator marks locales for rebuild on every replica.
type Invalidator interface {
	Notify(ctx context.Context, localeIDs ...string) error
}

// SearchRequest is a food search as received from a client.
type SearchRequest struct {
	LocaleID      string `json:"localeId"`
	Description   string `json:"description"`
	Limit         int    `json:"limit"`
	IsRecipe      bool   `json:"isRecipe"`
	IncludeHidden bool   `json:"includeHidden"`
}

// FoodResult is one food in a search response.
type FoodResult struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	ThumbnailImageURL string `json:"thumbnailImageUrl,omitempty"`
}

// SearchResponse is the answer to a SearchRequest.
type SearchResponse struct {
	Foods      []FoodResult           `json:"foods"`
	Categories []index.CategoryHeader `json:"categories"`
}

// Health summarises the index state.
type Health struct {
	Ready        bool `json:"ready"`
	PendingCalls int  `json:"pendingCalls"`
}

// Service combines index hits with attribute filtering and thumbnails.
type Service struct {
	index      Index
	locales    index.LocaleResolver
	attributes AttributeResolver
	thumbnails Thumbnailer
	bus        Invalidator
	limits     server.Config
	logger     *zap.Logger
}

// NewService creates a new foods service. thumbnails and bus may be nil.
func NewService(idx Index, locales index.LocaleResolver, attrs AttributeResolver, thumbnails Thumbnailer, bus Invalidator, limits server.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:      idx,
		locales:    locales,
		attributes: attrs,
		thumbnails: thumbnails,
		bus:        bus,
		limits:     limits,
		logger:     logger,
	}
}

// Search runs req against the index and returns at most req.Limit foods that
// may be used in the requested context.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	description := strings.TrimSpace(req.Description)
	if req.LocaleID == "" {
		return nil, fmt.Errorf("%w: locale is required", ErrInvalidRequest)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}

	locales, err := s.locales.Canonicalize(ctx, []string{req.LocaleID})
	if err != nil {
		return nil, err
	}
	limit := s.limits.ClampLimit(req.Limit)

	hits, err := s.index.Search(ctx, index.SearchParams{
		LocaleID:      locales[0],
		Description:   description,
		Limit:         limit * widenFactor,
		IncludeHidden: req.IncludeHidden,
	})
	if err != nil {
		return nil, err
	}

	foods, err := s.filter(ctx, hits.Foods, req.IsRecipe, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachThumbnails(ctx, foods); err != nil {
		return nil, err
	}

	categories := hits.Categories
	if categories == nil {
		categories = []index.CategoryHeader{}
	}
	if len(categories) > limit {
		categories = categories[:limit]
	}
	return &SearchResponse{Foods: foods, Categories: categories}, nil
}

// filter keeps the hits whose resolved attributes allow the recipe context,
// in index order, up to limit.
func (s *Service) filter(ctx context.Context, hits []index.FoodHeader, isRecipe bool, limit int) ([]FoodResult, error) {
	out := make([]FoodResult, 0, min(len(hits), limit))
	if len(hits) == 0 {
		return out, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	attrs, err := s.attributes.GetFoodAttributes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve food attributes: %w", err)
	}

	for _, h := range hits {
		a := attrs[h.ID]
		if a == nil {
			s.logger.Warn("Food without resolved attributes", zap.String("food_id", h.ID))
			continue
		}
		if !a.AllowedFor(isRecipe) {
			continue
		}
		out = append(out, FoodResult{ID: h.ID, Code: h.Code, Name: h.Name})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Service) attachThumbnails(ctx context.Context, foods []FoodResult) error {
	if s.thumbnails == nil || len(foods) == 0 {
		return nil
	}
	codes := make([]string, len(foods))
	for i, f := range foods {
		codes[i] = f.Code
	}
	urls, err := s.thumbnails.URLs(ctx, codes)
	if err != nil {
		// Thumbnails are decoration; a storage outage must not fail searches.
		s.logger.Warn("Thumbnail lookup failed", zap.Error(err))
		return nil
	}
	for i := range foods {
		foods[i].ThumbnailImageURL = urls[foods[i].Code]
	}
	return nil
}

// Rebuild forces an immediate rebuild on this replica.
func (s *Service) Rebuild(ctx context.Context, localeIDs []string) error {
	return s.index.Rebuild(ctx, localeIDs)
}

// Invalidate marks locales, or every locale when none is given, for rebuild
// on all replicas.
func (s *Service) Invalidate(ctx context.Context, localeIDs []string) error {
	if s.bus == nil {
		return s.index.Rebuild(ctx, localeIDs)
	}
	if len(localeIDs) > 0 {
		canonical, err := s.locales.Canonicalize(ctx, localeIDs)
		if err != nil {
			return err
		}
		localeIDs = canonical
	}
	return s.bus.Notify(ctx, localeIDs...)
}

// Health reports whether the index serves searches.
func (s *Service) Health() Health {
	return Health{Ready: s.index.Ready(), PendingCalls: s.index.PendingCalls()}
}
