package models_test

import (
	"testing"

	"food-index/feature/foods/models"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		model interface{ TableName() string }
		want  string
	}{
		{models.Locale{}, "locales"},
		{models.Food{}, "foods"},
		{models.FoodLocal{}, "food_locals"},
		{models.FoodCategory{}, "foods_categories"},
		{models.FoodAttribute{}, "foods_attributes"},
		{models.FoodBuilder{}, "food_builders"},
		{models.Category{}, "categories"},
		{models.CategoryLocal{}, "category_locals"},
		{models.CategoryCategory{}, "categories_categories"},
		{models.CategoryAttribute{}, "categories_attributes"},
		{models.AttributeDefaults{}, "attribute_defaults"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.TableName())
		})
	}
	assert.Len(t, models.All(), len(tests))
}
