package index

import (
	"context"
	"time"
)

// FoodRecord is one food as indexed for a locale.
type FoodRecord struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	EnglishName string `json:"englishName"`
	LocalName   string `json:"localName"`
	// AltNames holds alternative names keyed by language.
	AltNames         map[string][]string `json:"altNames,omitempty"`
	ParentCategories []string            `json:"parentCategories"`
}

// DisplayName is the local name, falling back to the English one.
func (f FoodRecord) DisplayName() string {
	if f.LocalName != "" {
		return f.LocalName
	}
	return f.EnglishName
}

// CategoryRecord is one category as indexed for a locale.
type CategoryRecord struct {
	ID               string   `json:"id"`
	Code             string   `json:"code"`
	EnglishName      string   `json:"englishName"`
	LocalName        string   `json:"localName"`
	Hidden           bool     `json:"hidden"`
	ParentCategories []string `json:"parentCategories"`
}

// DisplayName is the local name, falling back to the English one.
func (c CategoryRecord) DisplayName() string {
	if c.LocalName != "" {
		return c.LocalName
	}
	return c.EnglishName
}

// FoodBuilderEntry is a synonym group used to expand search queries.
// Entries are keyed by their lowercased Name within one locale.
type FoodBuilderEntry struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	TriggerWord string   `json:"triggerWord"`
	Synonyms    []string `json:"synonyms"`
	Description string   `json:"description"`
}

// Generation is an immutable snapshot of one locale's index. It is installed
// whole or not at all.
type Generation struct {
	LocaleID     string
	BuildID      uint64
	Foods        []FoodRecord
	Categories   []CategoryRecord
	FoodBuilders map[string]FoodBuilderEntry
	BuiltAt      time.Time

	matcher *Matcher
}

// SearchParams is the query sent to the worker.
type SearchParams struct {
	LocaleID      string `json:"localeId"`
	Description   string `json:"description"`
	Limit         int    `json:"limit"`
	IncludeHidden bool   `json:"includeHidden,omitempty"`
}

// FoodHeader is a food search hit.
type FoodHeader struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategoryHeader is a category search hit.
type CategoryHeader struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// SearchResults is the worker's answer to a query.
type SearchResults struct {
	Foods      []FoodHeader     `json:"foods"`
	Categories []CategoryHeader `json:"categories"`
}

// DataLoader supplies per-locale snapshots of the indexed records.
// Each call returns one consistent snapshot.
type DataLoader interface {
	// Locales lists every locale the index should hold.
	Locales(ctx context.Context) ([]string, error)
	FetchFoods(ctx context.Context, localeID string) ([]FoodRecord, error)
	FetchCategories(ctx context.Context, localeID string) ([]CategoryRecord, error)
	// FetchFoodBuilders returns entries keyed by lowercased name.
	FetchFoodBuilders(ctx context.Context, localeID string) (map[string]FoodBuilderEntry, error)
}

// LocaleResolver maps requested locale ids to canonical ones.
// Unknown ids yield an error wrapping ErrUnknownLocale.
type LocaleResolver interface {
	Canonicalize(ctx context.Context, ids []string) ([]string, error)
}
