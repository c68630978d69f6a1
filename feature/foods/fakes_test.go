package foods

import (
	"context"
	"fmt"
	"strings"

	"food-index/core/server"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/index"

	"github.com/stretchr/testify/mock"
)

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Ready() bool {
	return m.Called().Bool(0)
}

func (m *mockIndex) PendingCalls() int {
	return m.Called().Int(0)
}

func (m *mockIndex) Search(ctx context.Context, params index.SearchParams) (*index.SearchResults, error) {
	args := m.Called(ctx, params)
	if res, ok := args.Get(0).(*index.SearchResults); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIndex) Rebuild(ctx context.Context, localeIDs []string) error {
	return m.Called(ctx, localeIDs).Error(0)
}

type stubLocales struct{}

func (stubLocales) Canonicalize(_ context.Context, ids []string) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		switch strings.ToLower(strings.ReplaceAll(id, "-", "_")) {
		case "en_gb":
			out[i] = "en_GB"
		case "pt_pt":
			out[i] = "pt_PT"
		default:
			return nil, fmt.Errorf("%w: %s", index.ErrUnknownLocale, id)
		}
	}
	return out, nil
}

type stubAttributes map[string]attributes.InheritableAttributes

func (s stubAttributes) GetFoodAttributes(_ context.Context, ids []string) (map[string]*attributes.InheritableAttributes, error) {
	out := make(map[string]*attributes.InheritableAttributes, len(ids))
	for _, id := range ids {
		if a, ok := s[id]; ok {
			out[id] = &a
		} else {
			out[id] = nil
		}
	}
	return out, nil
}

type stubThumbnails map[string]string

func (s stubThumbnails) URLs(_ context.Context, codes []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, c := range codes {
		if u, ok := s[c]; ok {
			out[c] = u
		}
	}
	return out, nil
}

type recordingBus struct {
	notified [][]string
}

func (b *recordingBus) Notify(_ context.Context, localeIDs ...string) error {
	b.notified = append(b.notified, localeIDs)
	return nil
}

func attrs(use attributes.UseInRecipes) attributes.InheritableAttributes {
	return attributes.InheritableAttributes{ReadyMealOption: true, ReasonableAmount: 1000, UseInRecipes: use}
}

var testLimits = server.Config{DefaultLimit: 50, MaxLimit: 200}

// appleHits is what the index returns for "apple" in en_GB.
func appleHits() *index.SearchResults {
	return &index.SearchResults{
		Foods: []index.FoodHeader{
			{ID: "F1", Code: "APPI", Name: "Apple puree"},
			{ID: "F2", Code: "APPL", Name: "Apple"},
			{ID: "F3", Code: "APPS", Name: "Apple sauce"},
		},
		Categories: []index.CategoryHeader{{ID: "10", Code: "FRUT", Name: "Fruit"}},
	}
}

func appleAttributes() stubAttributes {
	return stubAttributes{
		"F1": attrs(attributes.RecipeIngredientOnly),
		"F2": attrs(attributes.Anywhere),
		"F3": attrs(attributes.RegularFoodOnly),
	}
}
