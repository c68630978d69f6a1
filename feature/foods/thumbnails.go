package foods

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"food-index/core/cache"
	"food-index/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ThumbnailNamespace is the cache namespace for thumbnail URLs.
const ThumbnailNamespace = "food-thumbnails"

const statConcurrency = 8

// Thumbnails looks up food thumbnails in the object store. Objects live at
// <prefix>/<food code>.jpg.
type Thumbnails struct {
	client  storage.Client
	cfg     storage.Config
	cache   *cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	presign time.Duration
}

// NewThumbnails creates a thumbnail lookup backed by client.
func NewThumbnails(client storage.Client, cfg storage.Config, c *cache.Cache, ttl time.Duration, logger *zap.Logger) *Thumbnails {
	if logger == nil {
		logger = zap.NewNop()
	}
	presign := time.Duration(cfg.PresignSeconds) * time.Second
	if presign <= 0 {
		presign = time.Hour
	}
	// Cached presigned URLs must outlive the cache entry.
	if ttl <= 0 || ttl > presign {
		ttl = presign / 2
	}
	return &Thumbnails{client: client, cfg: cfg, cache: c, ttl: ttl, logger: logger, presign: presign}
}

func (t *Thumbnails) objectName(code string) string {
	return path.Join(t.cfg.ThumbnailPrefix, code+".jpg")
}

// URLs returns thumbnail URLs keyed by food code. Codes without an object are
// absent from the result.
func (t *Thumbnails) URLs(ctx context.Context, codes []string) (map[string]string, error) {
	found, err := cache.RememberMany(ctx, t.cache, codes, ThumbnailNamespace, t.ttl, t.lookup)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(found))
	for code, u := range found {
		if u != nil && *u != "" {
			out[code] = *u
		}
	}
	return out, nil
}

// lookup stats every code. A missing object resolves to "" so the absence
// is cached too.
func (t *Thumbnails) lookup(ctx context.Context, codes []string) (map[string]string, error) {
	urls := make([]string, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, code := range codes {
		g.Go(func() error {
			u, err := t.resolve(gctx, code)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(codes))
	for i, code := range codes {
		out[code] = urls[i]
	}
	return out, nil
}

func (t *Thumbnails) resolve(ctx context.Context, code string) (string, error) {
	object := t.objectName(code)
	if _, err := t.client.StatObject(ctx, t.cfg.Bucket, object, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	if t.cfg.PublicURL != "" {
		return strings.TrimSuffix(t.cfg.PublicURL, "/") + "/" + object, nil
	}

	u, err := t.client.PresignedGetObject(ctx, t.cfg.Bucket, object, t.presign, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
