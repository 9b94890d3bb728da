package testsupport

import (
	"testing"

	"mapcull/internal/config"
	"mapcull/internal/history"
)

// MustOpenHistory opens the analysis history store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
