package database

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDatabaseURLEnv names the variable holding the integration test database.
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// TestPool returns a pool shared by every test in the binary, migrated once.
// The test is skipped when TEST_DATABASE_URL is unset.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv(TestDatabaseURLEnv)
	if dbURL == "" {
		t.Skip(TestDatabaseURLEnv + " not set, skipping integration test")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()
		testPool, testPoolErr = Connect(ctx, dbURL)
		if testPoolErr != nil {
			return
		}
		testPoolErr = RunMigrations(ctx, testPool)
	})
	if testPoolErr != nil {
		t.Fatalf("failed to set up test database: %v", testPoolErr)
	}
	return testPool
}

// TestTx returns a transaction that is rolled back when the test ends, so
// tests need no cleanup and can run in parallel. Code under test that calls
// WithTx on it gets a savepoint, which lets transfers run without committing.
//
//	tx := database.TestTx(t)
//	accounts := repository.NewAccountRepository(tx)
func TestTx(t *testing.T) pgx.Tx {
	t.Helper()

	ctx := context.Background()
	tx, err := TestPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}
