package repository

import (
	"context"
	"testing"
	"time"

	"food-index/core/cache"
	"food-index/core/database"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/index"
	"food-index/feature/foods/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedDemo(db))
	return New(db)
}

func TestExpectedSchemaMatchesModels(t *testing.T) {
	repo := setupRepository(t)
	report, err := database.VerifySchema(repo.db, ExpectedSchema())
	require.NoError(t, err)
	assert.True(t, report.OK(), "missing columns: %v", report.Missing)
}

func TestFetchFoods(t *testing.T) {
	repo := setupRepository(t)
	foods, err := repo.FetchFoods(context.Background(), "en_GB")
	require.NoError(t, err)
	require.Len(t, foods, 3)

	assert.Equal(t, "1", foods[0].ID)
	assert.Equal(t, "APPL", foods[0].Code)
	assert.Equal(t, []string{"Eating apple"}, foods[0].AltNames["en"])
	assert.Equal(t, []string{"FRUT"}, foods[0].ParentCategories)
	assert.Equal(t, []string{"BAKE", "FRUT"}, foods[1].ParentCategories)

	pt, err := repo.FetchFoods(context.Background(), "pt_PT")
	require.NoError(t, err)
	require.Len(t, pt, 1)
	assert.Equal(t, "Maçã", pt[0].LocalName)
	assert.Equal(t, "Apple", pt[0].EnglishName)
}

func TestFetchCategories(t *testing.T) {
	repo := setupRepository(t)
	cats, err := repo.FetchCategories(context.Background(), "en_GB")
	require.NoError(t, err)
	require.Len(t, cats, 3)

	assert.Equal(t, "FRUT", cats[0].Code)
	assert.Equal(t, []string{"ALLF"}, cats[0].ParentCategories)
	assert.True(t, cats[2].Hidden)
	assert.Empty(t, cats[2].ParentCategories)
}

func TestFetchFoodBuilders(t *testing.T) {
	repo := setupRepository(t)
	builders, err := repo.FetchFoodBuilders(context.Background(), "en_GB")
	require.NoError(t, err)
	require.Contains(t, builders, "fizzy")
	assert.Equal(t, []string{"soda", "pop"}, builders["fizzy"].Synonyms)

	none, err := repo.FetchFoodBuilders(context.Background(), "pt_PT")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFoodCodes(t *testing.T) {
	repo := setupRepository(t)
	codes, err := repo.FoodCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"APPC", "APPL", "BANA"}, codes)
}

func TestCanonicalize(t *testing.T) {
	repo := setupRepository(t)

	got, err := repo.Canonicalize(context.Background(), []string{"en-gb", "EN_GB", "pt_pt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"en_GB", "pt_PT"}, got)

	_, err = repo.Canonicalize(context.Background(), []string{"fr_FR"})
	assert.ErrorIs(t, err, index.ErrUnknownLocale)
}

func TestAttributeSource(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	parents, err := repo.CategoryParents(ctx, []string{"10", "20"})
	require.NoError(t, err)
	assert.Equal(t, []string{"30"}, parents)

	foodParents, err := repo.FoodParentCategories(ctx, []string{"2", "nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, foodParents["2"])

	d, err := repo.Defaults(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1000, d.ReasonableAmount)

	n, err := repo.CountDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFetchFoods_MalformedAltNamesAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := setupRepository(t).WithLogger(zap.New(core))
	require.NoError(t, repo.db.Exec("UPDATE food_locals SET alt_names = ? WHERE food_id = 1", "{not json").Error)

	foods, err := repo.FetchFoods(context.Background(), "en_GB")
	require.NoError(t, err)
	require.Len(t, foods, 3)
	assert.Nil(t, foods[0].AltNames)
	assert.Equal(t, "Apple", foods[0].LocalName)

	entries := logs.FilterMessage("Ignoring malformed alternative names").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ContextMap()["food_id"])
	assert.Equal(t, "en_GB", entries[0].ContextMap()["locale"])
}

func TestCheckDefaults_DuplicateRows(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.db.Create(&models.AttributeDefaults{ReasonableAmount: 5}).Error)

	resolver := attributes.NewResolver(repo, nil, time.Minute, nil)
	assert.ErrorIs(t, resolver.CheckDefaults(ctx), attributes.ErrAttributeDefaultsAmbiguous)
}

func TestResolverOverRepository(t *testing.T) {
	repo := setupRepository(t)
	store, err := cache.NewMemoryStore(100)
	require.NoError(t, err)
	resolver := attributes.NewResolver(repo, cache.New(store), time.Minute, nil)

	got, err := resolver.GetFoodAttributes(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)

	// Apple: ready meal from FRUT, amount from ALLF, the rest from defaults.
	assert.Equal(t, attributes.InheritableAttributes{
		ReadyMealOption:    false,
		SameAsBeforeOption: false,
		ReasonableAmount:   500,
		UseInRecipes:       attributes.Anywhere,
	}, *got["1"])

	// Cooking apple: FRUT (10) and BAKE (20) merged in id order.
	assert.Equal(t, attributes.RecipeIngredientOnly, got["2"].UseInRecipes)
	assert.False(t, got["2"].ReadyMealOption)

	// Banana keeps its own same-as-before option.
	assert.True(t, got["3"].SameAsBeforeOption)
}

func TestDefaultsMissing(t *testing.T) {
	repo := setupRepository(t)
	require.NoError(t, repo.db.Exec("DELETE FROM attribute_defaults").Error)

	d, err := repo.Defaults(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d)
}
