package models

type Locale struct {
	ID                string  `gorm:"primaryKey;column:id;type:varchar(16)"`
	EnglishName       string  `gorm:"column:english_name;type:varchar(64)"`
	LocalName         string  `gorm:"column:local_name;type:varchar(64)"`
	PrototypeLocaleID *string `gorm:"column:prototype_locale_id;type:varchar(16);default:NULL"`
}

func (Locale) TableName() string {
	return "locales"
}
