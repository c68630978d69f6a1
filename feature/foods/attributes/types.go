package attributes

import (
	"encoding/json"
	"fmt"
)

// UseInRecipes restricts where a food may be offered.
type UseInRecipes int

const (
	Anywhere             UseInRecipes = 0
	RegularFoodOnly      UseInRecipes = 1
	RecipeIngredientOnly UseInRecipes = 2
)

func (u UseInRecipes) String() string {
	switch u {
	case Anywhere:
		return "anywhere"
	case RegularFoodOnly:
		return "regular_food_only"
	case RecipeIngredientOnly:
		return "recipe_ingredient_only"
	default:
		return fmt.Sprintf("use_in_recipes(%d)", int(u))
	}
}

// Valid reports whether u is a known value.
func (u UseInRecipes) Valid() bool {
	return u >= Anywhere && u <= RecipeIngredientOnly
}

// InheritableAttributes are fully resolved attributes of a food or category.
type InheritableAttributes struct {
	ReadyMealOption    bool         `json:"readyMealOption"`
	SameAsBeforeOption bool         `json:"sameAsBeforeOption"`
	ReasonableAmount   int          `json:"reasonableAmount"`
	UseInRecipes       UseInRecipes `json:"useInRecipes"`
}

// AllowedFor reports whether a food with these attributes may be offered in a
// recipe (isRecipe) or as a regular food.
func (a InheritableAttributes) AllowedFor(isRecipe bool) bool {
	if isRecipe {
		return a.UseInRecipes != RegularFoodOnly
	}
	return a.UseInRecipes != RecipeIngredientOnly
}

// PartialAttributes is one attribute row; any field may be unset.
type PartialAttributes struct {
	ReadyMealOption    *bool         `json:"readyMealOption,omitempty"`
	SameAsBeforeOption *bool         `json:"sameAsBeforeOption,omitempty"`
	ReasonableAmount   *int          `json:"reasonableAmount,omitempty"`
	UseInRecipes       *UseInRecipes `json:"useInRecipes,omitempty"`
}

// Complete reports whether every field is set.
func (p PartialAttributes) Complete() bool {
	return p.ReadyMealOption != nil && p.SameAsBeforeOption != nil &&
		p.ReasonableAmount != nil && p.UseInRecipes != nil
}

// Merge fills the unset fields of p from other. Fields already set are kept.
func (p PartialAttributes) Merge(other PartialAttributes) PartialAttributes {
	if p.ReadyMealOption == nil {
		p.ReadyMealOption = other.ReadyMealOption
	}
	if p.SameAsBeforeOption == nil {
		p.SameAsBeforeOption = other.SameAsBeforeOption
	}
	if p.ReasonableAmount == nil {
		p.ReasonableAmount = other.ReasonableAmount
	}
	if p.UseInRecipes == nil {
		p.UseInRecipes = other.UseInRecipes
	}
	return p
}

// FillFrom resolves p, taking unset fields from defaults.
func (p PartialAttributes) FillFrom(defaults InheritableAttributes) InheritableAttributes {
	out := defaults
	if p.ReadyMealOption != nil {
		out.ReadyMealOption = *p.ReadyMealOption
	}
	if p.SameAsBeforeOption != nil {
		out.SameAsBeforeOption = *p.SameAsBeforeOption
	}
	if p.ReasonableAmount != nil {
		out.ReasonableAmount = *p.ReasonableAmount
	}
	if p.UseInRecipes != nil {
		out.UseInRecipes = *p.UseInRecipes
	}
	return out
}

func (p PartialAttributes) String() string {
	data, _ := json.Marshal(p)
	return string(data)
}
