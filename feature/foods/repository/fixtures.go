package repository

import (
	"food-index/feature/foods/models"

	"gorm.io/gorm"
)

// SeedDemo inserts a small two-locale food database. Used by tests and the
// seed command for local development.
func SeedDemo(db *gorm.DB) error {
	t, f := true, false
	amount := func(v int) *int { return &v }
	use := func(v int) *int { return &v }

	rows := []any{
		[]models.Locale{
			{ID: "en_GB", EnglishName: "United Kingdom", LocalName: "United Kingdom"},
			{ID: "pt_PT", EnglishName: "Portugal", LocalName: "Portugal"},
		},
		[]models.Category{
			{ID: 10, Code: "FRUT", EnglishName: "Fruit"},
			{ID: 20, Code: "BAKE", EnglishName: "Baking ingredients"},
			{ID: 30, Code: "ALLF", EnglishName: "All foods", Hidden: true},
		},
		[]models.CategoryLocal{
			{CategoryID: 10, LocaleID: "en_GB", Name: "Fruit"},
			{CategoryID: 20, LocaleID: "en_GB", Name: "Baking ingredients"},
			{CategoryID: 30, LocaleID: "en_GB", Name: "All foods"},
			{CategoryID: 10, LocaleID: "pt_PT", Name: "Fruta"},
		},
		[]models.CategoryCategory{
			{CategoryID: 30, SubcategoryID: 10},
			{CategoryID: 30, SubcategoryID: 20},
		},
		[]models.Food{
			{ID: 1, Code: "APPL", EnglishName: "Apple"},
			{ID: 2, Code: "APPC", EnglishName: "Apple, cooking"},
			{ID: 3, Code: "BANA", EnglishName: "Banana"},
		},
		[]models.FoodLocal{
			{FoodID: 1, LocaleID: "en_GB", Name: "Apple", AltNames: map[string][]string{"en": {"Eating apple"}}},
			{FoodID: 2, LocaleID: "en_GB", Name: "Apple, cooking"},
			{FoodID: 3, LocaleID: "en_GB", Name: "Banana"},
			{FoodID: 1, LocaleID: "pt_PT", Name: "Maçã"},
		},
		[]models.FoodCategory{
			{FoodID: 1, CategoryID: 10},
			{FoodID: 2, CategoryID: 10},
			{FoodID: 2, CategoryID: 20},
			{FoodID: 3, CategoryID: 10},
		},
		[]models.CategoryAttribute{
			{CategoryID: 10, ReadyMealOption: &f},
			{CategoryID: 20, UseInRecipes: use(2)},
			{CategoryID: 30, ReasonableAmount: amount(500)},
		},
		[]models.FoodAttribute{
			{FoodID: 3, SameAsBeforeOption: &t},
		},
		[]models.AttributeDefaults{
			{ID: 1, ReadyMealOption: true, SameAsBeforeOption: false, ReasonableAmount: 1000, UseInRecipes: 0},
		},
		[]models.FoodBuilder{
			{LocaleID: "en_GB", Code: "FB1", Name: "Fizzy", TriggerWord: "fizzy", Synonyms: "soda, pop", Description: "Soft drinks"},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
