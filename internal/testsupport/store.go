package testsupport

import (
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/summarystore"
)

// MustOpenSummaries opens a summary cache for tests and registers cleanup.
func MustOpenSummaries(t testing.TB, path string) *summarystore.Store {
	t.Helper()

	store, err := summarystore.Open(path)
	if err != nil {
		t.Fatalf("summarystore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
