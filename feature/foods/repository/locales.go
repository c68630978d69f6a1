package repository

import (
	"context"
	"fmt"
	"strings"

	"food-index/feature/foods/index"
)

func normalizeLocale(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", "_"))
}

// Canonicalize maps ids such as "en-gb" or "EN_GB" to the stored "en_GB".
// Duplicates are removed; unknown ids fail with index.ErrUnknownLocale.
func (r *Repository) Canonicalize(ctx context.Context, ids []string) ([]string, error) {
	known, err := r.Locales(ctx)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	byKey := make(map[string]string, len(known))
	for _, id := range known {
		byKey[normalizeLocale(id)] = id
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		canonical, ok := byKey[normalizeLocale(id)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", index.ErrUnknownLocale, id)
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}
