package models

type Food struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	Code        string `gorm:"column:code;type:varchar(8);uniqueIndex"`
	EnglishName string `gorm:"column:english_name;type:varchar(128)"`
}

func (Food) TableName() string {
	return "foods"
}

// FoodLocal includes a food in a locale under a local name.
type FoodLocal struct {
	ID       uint64              `gorm:"primaryKey;column:id"`
	FoodID   uint64              `gorm:"column:food_id;index"`
	LocaleID string              `gorm:"column:locale_id;type:varchar(16);index"`
	Name     string              `gorm:"column:name;type:varchar(256)"`
	AltNames map[string][]string `gorm:"column:alt_names;type:text;serializer:json"`
}

func (FoodLocal) TableName() string {
	return "food_locals"
}

// FoodCategory links a food to a direct parent category.
type FoodCategory struct {
	FoodID     uint64 `gorm:"primaryKey;autoIncrement:false;column:food_id"`
	CategoryID uint64 `gorm:"primaryKey;autoIncrement:false;column:category_id"`
}

func (FoodCategory) TableName() string {
	return "foods_categories"
}

// FoodAttribute holds the attributes set on a food. Null fields are inherited.
type FoodAttribute struct {
	FoodID             uint64 `gorm:"primaryKey;autoIncrement:false;column:food_id"`
	ReadyMealOption    *bool  `gorm:"column:ready_meal_option"`
	SameAsBeforeOption *bool  `gorm:"column:same_as_before_option"`
	ReasonableAmount   *int   `gorm:"column:reasonable_amount"`
	UseInRecipes       *int   `gorm:"column:use_in_recipes"`
}

func (FoodAttribute) TableName() string {
	return "foods_attributes"
}

// FoodBuilder is a synonym group of one locale.
type FoodBuilder struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	LocaleID    string `gorm:"column:locale_id;type:varchar(16);index"`
	Code        string `gorm:"column:code;type:varchar(16)"`
	Name        string `gorm:"column:name;type:varchar(128)"`
	TriggerWord string `gorm:"column:trigger_word;type:varchar(128)"`
	// Synonyms is a space or comma separated word list.
	Synonyms    string `gorm:"column:synonyms;type:text"`
	Description string `gorm:"column:description;type:text"`
}

func (FoodBuilder) TableName() string {
	return "food_builders"
}
