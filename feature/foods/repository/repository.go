package repository

import (
	"context"
	"fmt"
	"strconv"

	"food-index/feature/foods/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository reads the food database for the index worker, the attribute
// resolver and locale canonicalisation.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New wraps db.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db, logger: zap.NewNop()}
}

// WithLogger sets the logger used for rows that load with warnings.
func (r *Repository) WithLogger(logger *zap.Logger) *Repository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Migrate creates the food tables. Used by tests and the migrate command.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// ExpectedSchema lists the columns the service reads, per table.
func ExpectedSchema() map[string][]string {
	return map[string][]string{
		"locales":               {"id", "english_name", "local_name"},
		"foods":                 {"id", "code", "english_name"},
		"food_locals":           {"food_id", "locale_id", "name", "alt_names"},
		"foods_categories":      {"food_id", "category_id"},
		"foods_attributes":      {"food_id", "ready_meal_option", "same_as_before_option", "reasonable_amount", "use_in_recipes"},
		"categories":            {"id", "code", "english_name", "is_hidden"},
		"category_locals":       {"category_id", "locale_id", "name"},
		"categories_categories": {"category_id", "subcategory_id"},
		"categories_attributes": {"category_id", "ready_meal_option", "same_as_before_option", "reasonable_amount", "use_in_recipes"},
		"attribute_defaults":    {"ready_meal_option", "same_as_before_option", "reasonable_amount", "use_in_recipes"},
		"food_builders":         {"locale_id", "code", "name", "trigger_word", "synonyms", "description"},
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// parseIDs converts string ids to database ids. Non-numeric ids cannot exist
// in the database and are skipped.
func parseIDs(ids []string) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// snapshot runs fn in a read transaction so multi-query reads see one state.
func (r *Repository) snapshot(ctx context.Context, what string, fn func(tx *gorm.DB) error) error {
	if err := r.db.WithContext(ctx).Transaction(fn); err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}
