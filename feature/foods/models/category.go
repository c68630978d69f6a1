package models

type Category struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	Code        string `gorm:"column:code;type:varchar(8);uniqueIndex"`
	EnglishName string `gorm:"column:english_name;type:varchar(128)"`
	Hidden      bool   `gorm:"column:is_hidden;default:false"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryLocal includes a category in a locale under a local name.
type CategoryLocal struct {
	ID         uint64 `gorm:"primaryKey;column:id"`
	CategoryID uint64 `gorm:"column:category_id;index"`
	LocaleID   string `gorm:"column:locale_id;type:varchar(16);index"`
	Name       string `gorm:"column:name;type:varchar(256)"`
}

func (CategoryLocal) TableName() string {
	return "category_locals"
}

// CategoryCategory links a subcategory to a direct parent.
type CategoryCategory struct {
	CategoryID    uint64 `gorm:"primaryKey;autoIncrement:false;column:category_id"`
	SubcategoryID uint64 `gorm:"primaryKey;autoIncrement:false;column:subcategory_id;index"`
}

func (CategoryCategory) TableName() string {
	return "categories_categories"
}

// CategoryAttribute holds the attributes set on a category. Null fields are inherited.
type CategoryAttribute struct {
	CategoryID         uint64 `gorm:"primaryKey;autoIncrement:false;column:category_id"`
	ReadyMealOption    *bool  `gorm:"column:ready_meal_option"`
	SameAsBeforeOption *bool  `gorm:"column:same_as_before_option"`
	ReasonableAmount   *int   `gorm:"column:reasonable_amount"`
	UseInRecipes       *int   `gorm:"column:use_in_recipes"`
}

func (CategoryAttribute) TableName() string {
	return "categories_attributes"
}

// AttributeDefaults is the single fallback row of the attribute walk.
type AttributeDefaults struct {
	ID                 uint64 `gorm:"primaryKey;column:id"`
	ReadyMealOption    bool   `gorm:"column:ready_meal_option"`
	SameAsBeforeOption bool   `gorm:"column:same_as_before_option"`
	ReasonableAmount   int    `gorm:"column:reasonable_amount"`
	UseInRecipes       int    `gorm:"column:use_in_recipes"`
}

func (AttributeDefaults) TableName() string {
	return "attribute_defaults"
}
