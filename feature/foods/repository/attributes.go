package repository

import (
	"context"
	"errors"

	"food-index/feature/foods/attributes"
	"food-index/feature/foods/models"

	"gorm.io/gorm"
)

func partial(ready, same *bool, amount, use *int) attributes.PartialAttributes {
	p := attributes.PartialAttributes{
		ReadyMealOption:    ready,
		SameAsBeforeOption: same,
		ReasonableAmount:   amount,
	}
	if use != nil {
		u := attributes.UseInRecipes(*use)
		p.UseInRecipes = &u
	}
	return p
}

// FoodAttributes returns the attribute rows of the given foods.
func (r *Repository) FoodAttributes(ctx context.Context, foodIDs []string) (map[string]attributes.PartialAttributes, error) {
	out := make(map[string]attributes.PartialAttributes)
	ids := parseIDs(foodIDs)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.FoodAttribute
	if err := r.db.WithContext(ctx).Where("food_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[formatID(row.FoodID)] = partial(row.ReadyMealOption, row.SameAsBeforeOption, row.ReasonableAmount, row.UseInRecipes)
	}
	return out, nil
}

// CategoryAttributes returns the attribute rows of the given categories.
func (r *Repository) CategoryAttributes(ctx context.Context, categoryIDs []string) (map[string]attributes.PartialAttributes, error) {
	out := make(map[string]attributes.PartialAttributes)
	ids := parseIDs(categoryIDs)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.CategoryAttribute
	err := r.db.WithContext(ctx).Where("category_id IN ?", ids).Order("category_id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[formatID(row.CategoryID)] = partial(row.ReadyMealOption, row.SameAsBeforeOption, row.ReasonableAmount, row.UseInRecipes)
	}
	return out, nil
}

// FoodParentCategories returns the direct parent category ids of each food.
func (r *Repository) FoodParentCategories(ctx context.Context, foodIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	ids := parseIDs(foodIDs)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.FoodCategory
	err := r.db.WithContext(ctx).Where("food_id IN ?", ids).Order("food_id, category_id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		id := formatID(row.FoodID)
		out[id] = append(out[id], formatID(row.CategoryID))
	}
	return out, nil
}

// CategoryParents returns the union of the direct parents of the given categories.
func (r *Repository) CategoryParents(ctx context.Context, categoryIDs []string) ([]string, error) {
	ids := parseIDs(categoryIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	var parents []uint64
	err := r.db.WithContext(ctx).Model(&models.CategoryCategory{}).
		Distinct("category_id").
		Where("subcategory_id IN ?", ids).
		Order("category_id").
		Pluck("category_id", &parents).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, len(parents))
	for i, p := range parents {
		out[i] = formatID(p)
	}
	return out, nil
}

// CountDefaults returns the number of attribute defaults rows.
func (r *Repository) CountDefaults(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AttributeDefaults{}).Count(&n).Error
	return n, err
}

// Defaults returns the attribute defaults row, or nil if there is none.
func (r *Repository) Defaults(ctx context.Context) (*attributes.InheritableAttributes, error) {
	var row models.AttributeDefaults
	err := r.db.WithContext(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attributes.InheritableAttributes{
		ReadyMealOption:    row.ReadyMealOption,
		SameAsBeforeOption: row.SameAsBeforeOption,
		ReasonableAmount:   row.ReasonableAmount,
		UseInRecipes:       attributes.UseInRecipes(row.UseInRecipes),
	}, nil
}
