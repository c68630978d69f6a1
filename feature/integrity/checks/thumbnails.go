package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"food-index/core/storage"

	"github.com/minio/minio-go/v7"
)

// ThumbnailExtension is the suffix of thumbnail objects.
const ThumbnailExtension = ".jpg"

// ThumbnailReport compares food codes with the thumbnails in storage.
type ThumbnailReport struct {
	Expected int `json:"expected"`
	Found    int `json:"found"`
	// Missing lists foods without a thumbnail.
	Missing []string `json:"missing"`
	// Orphans lists thumbnails without a food.
	Orphans []string `json:"orphans"`
}

// CheckThumbnails lists <prefix>/*.jpg and diffs the codes against codes.
func CheckThumbnails(ctx context.Context, client storage.Client, bucket, prefix string, codes []string) (*ThumbnailReport, error) {
	base := folder(prefix)
	stored := make(map[string]struct{})
	opts := minio.ListObjectsOptions{Prefix: base, Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list thumbnails: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, base)
		if strings.Contains(name, "/") || !strings.HasSuffix(name, ThumbnailExtension) {
			continue
		}
		stored[strings.TrimSuffix(name, ThumbnailExtension)] = struct{}{}
	}

	report := &ThumbnailReport{Expected: len(codes), Missing: []string{}, Orphans: []string{}}
	known := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		known[code] = struct{}{}
		if _, ok := stored[code]; ok {
			report.Found++
		} else {
			report.Missing = append(report.Missing, code)
		}
	}
	for code := range stored {
		if _, ok := known[code]; !ok {
			report.Orphans = append(report.Orphans, code)
		}
	}
	slices.Sort(report.Missing)
	slices.Sort(report.Orphans)
	return report, nil
}
