package attributes

import (
	"context"
	"fmt"
	"time"

	"food-index/core/cache"
	"food-index/core/utils"

	"go.uber.org/zap"
)

// Cache namespaces of resolved attributes.
const (
	FoodNamespace     = "food-attributes"
	CategoryNamespace = "category-attributes"
)

// Resolver resolves inheritable attributes by walking up the category graph.
type Resolver struct {
	source Source
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver creates a resolver reading from source. Batch lookups are cached
// in c for ttl.
func NewResolver(source Source, c *cache.Cache, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, cache: c, ttl: ttl, logger: logger}
}

// CheckDefaults fails with ErrAttributeDefaultsMissing when the defaults row is
// absent, and with ErrAttributeDefaultsAmbiguous when the source counts more
// than one.
func (r *Resolver) CheckDefaults(ctx context.Context) error {
	if counter, ok := r.source.(DefaultsCounter); ok {
		n, err := counter.CountDefaults(ctx)
		if err != nil {
			return fmt.Errorf("count attribute defaults: %w", err)
		}
		switch {
		case n == 0:
			return ErrAttributeDefaultsMissing
		case n > 1:
			return fmt.Errorf("%w: found %d", ErrAttributeDefaultsAmbiguous, n)
		}
	}
	d, err := r.source.Defaults(ctx)
	if err != nil {
		return fmt.Errorf("read attribute defaults: %w", err)
	}
	if d == nil {
		return ErrAttributeDefaultsMissing
	}
	return nil
}

// GetFoodAttributes returns resolved attributes for every id through the batch cache.
func (r *Resolver) GetFoodAttributes(ctx context.Context, foodIDs []string) (map[string]*InheritableAttributes, error) {
	return cache.RememberMany(ctx, r.cache, foodIDs, FoodNamespace, r.ttl, r.ResolveFoodsAttributes)
}

// GetCategoryAttributes returns resolved attributes for every id through the batch cache.
func (r *Resolver) GetCategoryAttributes(ctx context.Context, categoryIDs []string) (map[string]*InheritableAttributes, error) {
	return cache.RememberMany(ctx, r.cache, categoryIDs, CategoryNamespace, r.ttl, r.ResolveCategoriesAttributes)
}

// ResolveFoodAttributes resolves one food.
func (r *Resolver) ResolveFoodAttributes(ctx context.Context, foodID string) (InheritableAttributes, error) {
	res, err := r.ResolveFoodsAttributes(ctx, []string{foodID})
	if err != nil {
		return InheritableAttributes{}, err
	}
	return res[foodID], nil
}

// ResolveFoodsAttributes resolves each food from its own row, then its
// ancestor categories, then the defaults.
func (r *Resolver) ResolveFoodsAttributes(ctx context.Context, foodIDs []string) (map[string]InheritableAttributes, error) {
	own, err := r.source.FoodAttributes(ctx, foodIDs)
	if err != nil {
		return nil, fmt.Errorf("read food attributes: %w", err)
	}

	var incomplete []string
	for _, id := range foodIDs {
		if !own[id].Complete() {
			incomplete = append(incomplete, id)
		}
	}

	parents := map[string][]string{}
	if len(incomplete) > 0 {
		parents, err = r.source.FoodParentCategories(ctx, incomplete)
		if err != nil {
			return nil, fmt.Errorf("read food parent categories: %w", err)
		}
	}

	out := make(map[string]InheritableAttributes, len(foodIDs))
	for _, id := range foodIDs {
		res, err := r.walk(ctx, parents[id], own[id], nil)
		if err != nil {
			return nil, fmt.Errorf("resolve food %s: %w", id, err)
		}
		out[id] = res
	}
	return out, nil
}

// ResolveCategoryAttributes resolves one category.
func (r *Resolver) ResolveCategoryAttributes(ctx context.Context, categoryID string) (InheritableAttributes, error) {
	res, err := r.ResolveCategoriesAttributes(ctx, []string{categoryID})
	if err != nil {
		return InheritableAttributes{}, err
	}
	return res[categoryID], nil
}

// ResolveCategoriesAttributes resolves each category from its own row, then
// its ancestors, then the defaults.
func (r *Resolver) ResolveCategoriesAttributes(ctx context.Context, categoryIDs []string) (map[string]InheritableAttributes, error) {
	own, err := r.source.CategoryAttributes(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("read category attributes: %w", err)
	}

	out := make(map[string]InheritableAttributes, len(categoryIDs))
	for _, id := range categoryIDs {
		partial := own[id]
		var frontier []string
		if !partial.Complete() {
			frontier, err = r.source.CategoryParents(ctx, []string{id})
			if err != nil {
				return nil, fmt.Errorf("read parents of category %s: %w", id, err)
			}
		}
		res, err := r.walk(ctx, frontier, partial, []string{id})
		if err != nil {
			return nil, fmt.Errorf("resolve category %s: %w", id, err)
		}
		out[id] = res
	}
	return out, nil
}

// walk climbs the category graph one frontier at a time. Rows of a frontier
// are merged in ascending id order, first set value wins per field. Visited
// categories never re-enter the frontier, so cycles terminate. An exhausted
// frontier resolves the remaining fields from the defaults.
func (r *Resolver) walk(ctx context.Context, frontier []string, partial PartialAttributes, seen []string) (InheritableAttributes, error) {
	visited := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		visited[id] = struct{}{}
	}

	for !partial.Complete() {
		next := make([]string, 0, len(frontier))
		for _, id := range frontier {
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			next = append(next, id)
		}
		if len(next) == 0 {
			return r.fillDefaults(ctx, partial)
		}
		utils.SortIDs(next)

		rows, err := r.source.CategoryAttributes(ctx, next)
		if err != nil {
			return InheritableAttributes{}, fmt.Errorf("read category attributes: %w", err)
		}
		for _, id := range next {
			if row, ok := rows[id]; ok {
				partial = partial.Merge(row)
			}
		}
		if partial.Complete() {
			break
		}

		frontier, err = r.source.CategoryParents(ctx, next)
		if err != nil {
			return InheritableAttributes{}, fmt.Errorf("read category parents: %w", err)
		}
	}

	return partial.FillFrom(InheritableAttributes{}), nil
}

func (r *Resolver) fillDefaults(ctx context.Context, partial PartialAttributes) (InheritableAttributes, error) {
	d, err := r.source.Defaults(ctx)
	if err != nil {
		return InheritableAttributes{}, fmt.Errorf("read attribute defaults: %w", err)
	}
	if d == nil {
		return InheritableAttributes{}, ErrAttributeDefaultsMissing
	}
	return partial.FillFrom(*d), nil
}
