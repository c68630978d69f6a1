package foods

import (
	"context"
	"errors"
	"testing"

	"food-index/feature/foods/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func foodIDs(res *SearchResponse) []string {
	ids := make([]string, len(res.Foods))
	for i, f := range res.Foods {
		ids[i] = f.ID
	}
	return ids
}

func TestService_Search_FiltersByRecipeContext(t *testing.T) {
	tests := []struct {
		name     string
		isRecipe bool
		want     []string
	}{
		{name: "regular food", isRecipe: false, want: []string{"F2", "F3"}},
		{name: "recipe ingredient", isRecipe: true, want: []string{"F1", "F2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := new(mockIndex)
			idx.On("Search", mock.Anything, mock.Anything).Return(appleHits(), nil)
			svc := NewService(idx, stubLocales{}, appleAttributes(), nil, nil, testLimits, nil)

			res, err := svc.Search(context.Background(), SearchRequest{
				LocaleID:    "en_GB",
				Description: "apple",
				IsRecipe:    tt.isRecipe,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, foodIDs(res))
			assert.Len(t, res.Categories, 1)
		})
	}
}

func TestService_Search_WidensAndTruncates(t *testing.T) {
	idx := new(mockIndex)
	idx.On("Search", mock.Anything, index.SearchParams{
		LocaleID:    "en_GB",
		Description: "apple",
		Limit:       2,
	}).Return(appleHits(), nil)
	svc := NewService(idx, stubLocales{}, appleAttributes(), nil, nil, testLimits, nil)

	res, err := svc.Search(context.Background(), SearchRequest{
		LocaleID:    "en-gb",
		Description: "  apple ",
		Limit:       1,
		IsRecipe:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, foodIDs(res))
	assert.Len(t, res.Categories, 1)
	idx.AssertExpectations(t)
}

func TestService_Search_SkipsFoodsWithoutAttributes(t *testing.T) {
	idx := new(mockIndex)
	idx.On("Search", mock.Anything, mock.Anything).Return(appleHits(), nil)
	svc := NewService(idx, stubLocales{}, stubAttributes{"F2": attrs(0)}, nil, nil, testLimits, nil)

	res, err := svc.Search(context.Background(), SearchRequest{LocaleID: "en_GB", Description: "apple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"F2"}, foodIDs(res))
}

func TestService_Search_AttachesThumbnails(t *testing.T) {
	idx := new(mockIndex)
	idx.On("Search", mock.Anything, mock.Anything).Return(appleHits(), nil)
	thumbs := stubThumbnails{"APPL": "https://cdn.example.com/thumbnails/APPL.jpg"}
	svc := NewService(idx, stubLocales{}, appleAttributes(), thumbs, nil, testLimits, nil)

	res, err := svc.Search(context.Background(), SearchRequest{LocaleID: "en_GB", Description: "apple"})
	require.NoError(t, err)
	require.Len(t, res.Foods, 2)
	assert.Equal(t, "https://cdn.example.com/thumbnails/APPL.jpg", res.Foods[0].ThumbnailImageURL)
	assert.Empty(t, res.Foods[1].ThumbnailImageURL)
}

func TestService_Search_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     SearchRequest
		wantErr error
	}{
		{name: "missing locale", req: SearchRequest{Description: "apple"}, wantErr: ErrInvalidRequest},
		{name: "blank description", req: SearchRequest{LocaleID: "en_GB", Description: "  "}, wantErr: ErrInvalidRequest},
		{name: "negative limit", req: SearchRequest{LocaleID: "en_GB", Description: "apple", Limit: -1}, wantErr: ErrInvalidRequest},
		{name: "unknown locale", req: SearchRequest{LocaleID: "xx_XX", Description: "apple"}, wantErr: index.ErrUnknownLocale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := new(mockIndex)
			svc := NewService(idx, stubLocales{}, appleAttributes(), nil, nil, testLimits, nil)

			_, err := svc.Search(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			idx.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Search_IndexNotReady(t *testing.T) {
	idx := new(mockIndex)
	idx.On("Search", mock.Anything, mock.Anything).Return(nil, index.ErrIndexNotReady)
	svc := NewService(idx, stubLocales{}, appleAttributes(), nil, nil, testLimits, nil)

	_, err := svc.Search(context.Background(), SearchRequest{LocaleID: "en_GB", Description: "apple"})
	assert.ErrorIs(t, err, index.ErrIndexNotReady)
}

func TestService_Invalidate(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(new(mockIndex), stubLocales{}, appleAttributes(), nil, bus, testLimits, nil)

	require.NoError(t, svc.Invalidate(context.Background(), []string{"pt-pt"}))
	require.NoError(t, svc.Invalidate(context.Background(), nil))
	assert.Equal(t, [][]string{{"pt_PT"}, nil}, bus.notified)

	err := svc.Invalidate(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, index.ErrUnknownLocale)
}

func TestService_InvalidateWithoutBusRebuilds(t *testing.T) {
	idx := new(mockIndex)
	idx.On("Rebuild", mock.Anything, []string{"en_GB"}).Return(errors.New("boom"))
	svc := NewService(idx, stubLocales{}, appleAttributes(), nil, nil, testLimits, nil)

	assert.EqualError(t, svc.Invalidate(context.Background(), []string{"en_GB"}), "boom")
}
