package testutil

import (
	"fmt"
	"hrtools/lib/telemetry"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

type ServiceParams struct {
	Name string
	// if set, an in-memory page cache is opened
	Cache bool
}

type ServiceResult struct {
	Cache *badger.DB
}

// SetupService configures telemetry for the test and opens whatever storage
// it asks for, everything is released when the test ends.
func SetupService(t testing.TB, params ServiceParams) ServiceResult {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	var result ServiceResult
	if params.Cache {
		db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		result.Cache = db
	}
	return result
}
