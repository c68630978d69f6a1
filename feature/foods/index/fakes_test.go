package index

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLoader struct {
	mu         sync.Mutex
	locales    []string
	foods      map[string][]FoodRecord
	categories map[string][]CategoryRecord
	builders   map[string]map[string]FoodBuilderEntry
	fail       error
	// onFetchFoods runs after the foods snapshot is taken.
	onFetchFoods func(localeID string)
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		foods:      make(map[string][]FoodRecord),
		categories: make(map[string][]CategoryRecord),
		builders:   make(map[string]map[string]FoodBuilderEntry),
	}
}

func (l *fakeLoader) setFoods(localeID string, foods ...FoodRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.foods[localeID] = foods
}

func (l *fakeLoader) setFail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = err
}

func (l *fakeLoader) Locales(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.locales...), nil
}

func (l *fakeLoader) FetchFoods(_ context.Context, localeID string) ([]FoodRecord, error) {
	l.mu.Lock()
	foods, fail, hook := l.foods[localeID], l.fail, l.onFetchFoods
	l.mu.Unlock()
	if hook != nil {
		hook(localeID)
	}
	if fail != nil {
		return nil, fail
	}
	return foods, nil
}

func (l *fakeLoader) FetchCategories(_ context.Context, localeID string) ([]CategoryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.categories[localeID], nil
}

func (l *fakeLoader) FetchFoodBuilders(_ context.Context, localeID string) (map[string]FoodBuilderEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.builders[localeID], nil
}

type fakeLocales struct{}

func (fakeLocales) Canonicalize(_ context.Context, ids []string) ([]string, error) {
	known := map[string]string{"en_gb": "en_GB", "pt_pt": "pt_PT"}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		c, ok := known[strings.ToLower(strings.ReplaceAll(id, "-", "_"))]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, id)
		}
		out = append(out, c)
	}
	return out, nil
}

type harness struct {
	gateway *Gateway
	worker  *Worker
	runErr  chan error
}

func startHarness(t *testing.T, loader DataLoader, cfg GatewayConfig) *harness {
	t.Helper()
	gwConn, wConn := Pipe()
	h := &harness{
		gateway: NewGateway(gwConn, fakeLocales{}, zap.NewNop(), cfg),
		worker:  NewWorker(wConn, loader, zap.NewNop()),
		runErr:  make(chan error, 1),
	}
	go func() { h.runErr <- h.worker.Run(context.Background()) }()
	t.Cleanup(func() {
		_ = h.gateway.Close()
		select {
		case <-h.runErr:
		case <-time.After(2 * time.Second):
			t.Error("worker did not stop")
		}
	})
	return h
}

func (h *harness) init(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.gateway.Init(ctx))
}

func food(id, code, name string) FoodRecord {
	return FoodRecord{ID: id, Code: code, EnglishName: name, LocalName: name}
}

func category(id, code, name string) CategoryRecord {
	return CategoryRecord{ID: id, Code: code, EnglishName: name, LocalName: name}
}

func foodCodes(res *SearchResults) []string {
	codes := make([]string, 0, len(res.Foods))
	for _, f := range res.Foods {
		codes = append(codes, f.Code)
	}
	return codes
}
