package checks

import (
	"context"
	"errors"
	"testing"

	"food-index/core/database"
	"food-index/core/storage/mocks"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/repository"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestCheckStorage(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "food-images").Return(false, nil)

		_, err := CheckStorage(context.Background(), mockClient, "food-images", "thumbnails")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("Folder Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "food-images").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "food-images", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
			return o.Prefix == "thumbnails/"
		})).Return(objects())

		report, err := CheckStorage(context.Background(), mockClient, "food-images", "thumbnails")
		require.NoError(t, err)
		assert.False(t, report.PrefixExists)
	})

	t.Run("Folder Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "food-images").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "food-images", mock.Anything).Return(objects("thumbnails/APPL.jpg"))

		report, err := CheckStorage(context.Background(), mockClient, "food-images", "thumbnails")
		require.NoError(t, err)
		assert.True(t, report.PrefixExists)
	})

	t.Run("Bucket Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "food-images").Return(false, errors.New("denied"))

		_, err := CheckStorage(context.Background(), mockClient, "food-images", "thumbnails")
		assert.ErrorContains(t, err, "denied")
	})
}

func TestFixStorage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "food-images", "thumbnails/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStorage(context.Background(), mockClient, "food-images", "thumbnails", zap.NewNop())
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestCheckThumbnails(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListObjects", mock.Anything, "food-images", mock.Anything).Return(objects(
		"thumbnails/",
		"thumbnails/APPL.jpg",
		"thumbnails/KIWI.jpg",
		"thumbnails/BANA.png",
		"thumbnails/old/APPC.jpg",
	))

	report, err := CheckThumbnails(context.Background(), mockClient, "food-images", "thumbnails", []string{"APPL", "APPC", "BANA"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Expected)
	assert.Equal(t, 1, report.Found)
	assert.Equal(t, []string{"APPC", "BANA"}, report.Missing)
	assert.Equal(t, []string{"KIWI"}, report.Orphans)
}

func TestCheckThumbnails_ListError(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("access denied")}
	close(ch)

	mockClient := new(mocks.Client)
	mockClient.On("ListObjects", mock.Anything, "food-images", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := CheckThumbnails(context.Background(), mockClient, "food-images", "thumbnails", []string{"APPL"})
	assert.ErrorContains(t, err, "access denied")
}

func TestCheckSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	expected := repository.ExpectedSchema()
	expected["foods"] = append(expected["foods"], "energy_kcal")

	report, err := CheckSchema(db, expected)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "error", report.Tables["foods"].Status)
	assert.Equal(t, []string{"energy_kcal"}, report.Tables["foods"].MissingColumns)
	assert.Equal(t, "ok", report.Tables["categories"].Status)

	_, err = CheckSchema(nil, expected)
	assert.Error(t, err)
}

type defaultsFunc func(ctx context.Context) (*attributes.InheritableAttributes, error)

func (f defaultsFunc) Defaults(ctx context.Context) (*attributes.InheritableAttributes, error) {
	return f(ctx)
}

func TestCheckDefaults(t *testing.T) {
	present := defaultsFunc(func(context.Context) (*attributes.InheritableAttributes, error) {
		return &attributes.InheritableAttributes{ReadyMealOption: true, ReasonableAmount: 1000}, nil
	})
	report, err := CheckDefaults(context.Background(), present)
	require.NoError(t, err)
	assert.True(t, report.Present)
	assert.Equal(t, 1000, report.Defaults.ReasonableAmount)

	assert.True(t, report.Unique)

	missing := defaultsFunc(func(context.Context) (*attributes.InheritableAttributes, error) { return nil, nil })
	report, err = CheckDefaults(context.Background(), missing)
	require.NoError(t, err)
	assert.False(t, report.Present)
	assert.False(t, report.Unique)

	duplicated := countedDefaults{defaultsFunc: present, rows: 2}
	report, err = CheckDefaults(context.Background(), duplicated)
	require.NoError(t, err)
	assert.True(t, report.Present)
	assert.Equal(t, int64(2), report.Rows)
	assert.False(t, report.Unique)
}

type countedDefaults struct {
	defaultsFunc
	rows int64
}

func (c countedDefaults) CountDefaults(context.Context) (int64, error) { return c.rows, nil }
