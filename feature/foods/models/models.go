package models

// All lists every model of the food database, in creation order.
func All() []any {
	return []any{
		&Locale{},
		&Food{},
		&FoodLocal{},
		&Category{},
		&CategoryLocal{},
		&FoodCategory{},
		&CategoryCategory{},
		&FoodAttribute{},
		&CategoryAttribute{},
		&AttributeDefaults{},
		&FoodBuilder{},
	}
}
