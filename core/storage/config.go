package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding food images.
	Bucket string `mapstructure:"bucket" default:"food-images"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ThumbnailPrefix is the object prefix under which thumbnails are stored as <prefix>/<food code>.jpg.
	ThumbnailPrefix string `mapstructure:"thumbnail_prefix" default:"thumbnails"`
	// PublicURL, when set, is used as the base for thumbnail URLs instead of presigning.
	PublicURL string `mapstructure:"public_url" default:""`
	// PresignSeconds is the lifetime of presigned thumbnail URLs.
	PresignSeconds int `mapstructure:"presign_seconds" default:"3600"`
}
