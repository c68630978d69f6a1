package repository

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"food-index/feature/foods/index"
	"food-index/feature/foods/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type localFoodRow struct {
	ID          uint64
	Code        string
	EnglishName string
	Name        string
	AltNames    string
}

type localCategoryRow struct {
	ID          uint64
	Code        string
	EnglishName string
	Name        string
	Hidden      bool
}

type parentLink struct {
	ChildID    uint64
	ParentCode string
}

// Locales lists every locale id.
func (r *Repository) Locales(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Locale{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// FetchFoods returns the foods of a locale with their parent category codes.
func (r *Repository) FetchFoods(ctx context.Context, localeID string) ([]index.FoodRecord, error) {
	var (
		rows  []localFoodRow
		links []parentLink
	)
	err := r.snapshot(ctx, "foods of "+localeID, func(tx *gorm.DB) error {
		err := tx.Table("food_locals AS fl").
			Select("f.id AS id, f.code AS code, f.english_name AS english_name, fl.name AS name, fl.alt_names AS alt_names").
			Joins("JOIN foods AS f ON f.id = fl.food_id").
			Where("fl.locale_id = ?", localeID).
			Order("f.id").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		return tx.Table("foods_categories AS fc").
			Select("fc.food_id AS child_id, c.code AS parent_code").
			Joins("JOIN categories AS c ON c.id = fc.category_id").
			Joins("JOIN food_locals AS fl ON fl.food_id = fc.food_id").
			Where("fl.locale_id = ?", localeID).
			Order("fc.food_id, c.code").
			Scan(&links).Error
	})
	if err != nil {
		return nil, err
	}

	parents := groupLinks(links)
	out := make([]index.FoodRecord, 0, len(rows))
	for _, row := range rows {
		rec := index.FoodRecord{
			ID:               formatID(row.ID),
			Code:             row.Code,
			EnglishName:      row.EnglishName,
			LocalName:        row.Name,
			ParentCategories: parents[row.ID],
		}
		if row.AltNames != "" {
			if err := json.Unmarshal([]byte(row.AltNames), &rec.AltNames); err != nil {
				r.logger.Warn("Ignoring malformed alternative names",
					zap.String("food_id", rec.ID),
					zap.String("locale", localeID),
					zap.Error(err),
				)
				rec.AltNames = nil
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchCategories returns the categories of a locale with their parent codes.
func (r *Repository) FetchCategories(ctx context.Context, localeID string) ([]index.CategoryRecord, error) {
	var (
		rows  []localCategoryRow
		links []parentLink
	)
	err := r.snapshot(ctx, "categories of "+localeID, func(tx *gorm.DB) error {
		err := tx.Table("category_locals AS cl").
			Select("c.id AS id, c.code AS code, c.english_name AS english_name, cl.name AS name, c.is_hidden AS hidden").
			Joins("JOIN categories AS c ON c.id = cl.category_id").
			Where("cl.locale_id = ?", localeID).
			Order("c.id").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		return tx.Table("categories_categories AS cc").
			Select("cc.subcategory_id AS child_id, p.code AS parent_code").
			Joins("JOIN categories AS p ON p.id = cc.category_id").
			Joins("JOIN category_locals AS cl ON cl.category_id = cc.subcategory_id").
			Where("cl.locale_id = ?", localeID).
			Order("cc.subcategory_id, p.code").
			Scan(&links).Error
	})
	if err != nil {
		return nil, err
	}

	parents := groupLinks(links)
	out := make([]index.CategoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, index.CategoryRecord{
			ID:               formatID(row.ID),
			Code:             row.Code,
			EnglishName:      row.EnglishName,
			LocalName:        row.Name,
			Hidden:           row.Hidden,
			ParentCategories: parents[row.ID],
		})
	}
	return out, nil
}

// FetchFoodBuilders returns the synonym groups of a locale keyed by lowercased name.
func (r *Repository) FetchFoodBuilders(ctx context.Context, localeID string) (map[string]index.FoodBuilderEntry, error) {
	var rows []models.FoodBuilder
	if err := r.db.WithContext(ctx).Where("locale_id = ?", localeID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]index.FoodBuilderEntry, len(rows))
	for _, row := range rows {
		name := strings.ToLower(strings.TrimSpace(row.Name))
		out[name] = index.FoodBuilderEntry{
			ID:          formatID(row.ID),
			Code:        row.Code,
			Name:        name,
			TriggerWord: row.TriggerWord,
			Synonyms:    splitWords(row.Synonyms),
			Description: row.Description,
		}
	}
	return out, nil
}

func groupLinks(links []parentLink) map[uint64][]string {
	out := make(map[uint64][]string)
	for _, l := range links {
		out[l.ChildID] = append(out[l.ChildID], l.ParentCode)
	}
	return out
}

func splitWords(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if words == nil {
		return []string{}
	}
	return words
}

// FoodCodes lists every food code.
func (r *Repository) FoodCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.Food{}).Order("code").Pluck("code", &codes).Error
	return codes, err
}
