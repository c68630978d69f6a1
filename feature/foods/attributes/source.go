package attributes

import (
	"context"
	"errors"
)

// ErrAttributeDefaultsMissing means the attribute defaults row does not exist.
// It is a deployment error and is never retried.
var ErrAttributeDefaultsMissing = errors.New("attribute defaults row is missing")

// ErrAttributeDefaultsAmbiguous means more than one attribute defaults row exists.
var ErrAttributeDefaultsAmbiguous = errors.New("attribute defaults must be a single row")

// DefaultsCounter is implemented by sources that can count defaults rows.
type DefaultsCounter interface {
	CountDefaults(ctx context.Context) (int64, error)
}

// Source reads attribute rows and the category hierarchy.
type Source interface {
	// FoodAttributes returns the rows of the foods that have one.
	FoodAttributes(ctx context.Context, foodIDs []string) (map[string]PartialAttributes, error)
	// CategoryAttributes returns the rows of the categories that have one.
	CategoryAttributes(ctx context.Context, categoryIDs []string) (map[string]PartialAttributes, error)
	// FoodParentCategories returns the direct parent category ids of each food.
	FoodParentCategories(ctx context.Context, foodIDs []string) (map[string][]string, error)
	// CategoryParents returns the union of the direct parents of categoryIDs.
	CategoryParents(ctx context.Context, categoryIDs []string) ([]string, error)
	// Defaults returns the defaults row, or nil when it is missing.
	Defaults(ctx context.Context) (*InheritableAttributes, error)
}
