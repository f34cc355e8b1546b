//go:build integration

package pgxrepo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/repository/gormrepo"
	"github.com/yourusername/quizmaster-api/internal/repository/pgxrepo"
	"github.com/yourusername/quizmaster-api/internal/repository/repotest"
	"github.com/yourusername/quizmaster-api/pkg/database"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "quizmaster_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/quizmaster_test?sslmode=disable", host, port.Port())

	if err := database.MigrateURL(dsn); err != nil {
		panic(err)
	}

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// truncate очищает таблицы между подтестами; схема общая для всего пакета
func truncate(ctx context.Context, t *testing.T) {
	t.Helper()
	pool, err := database.NewPgxPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	_, err = pool.Exec(ctx, `TRUNCATE users, quizzes, questions, choices CASCADE`)
	require.NoError(t, err)
}

func TestPgxStore_Contract(t *testing.T) {
	repotest.RunStoreContract(t, func(t *testing.T) repository.Store {
		ctx := context.Background()
		pool, err := database.NewPgxPool(ctx, dsn)
		require.NoError(t, err)
		store := pgxrepo.NewStore(pool)
		t.Cleanup(func() { _ = store.Close() })
		truncate(ctx, t)
		return store
	})
}

func TestGormPostgresStore_Contract(t *testing.T) {
	repotest.RunStoreContract(t, func(t *testing.T) repository.Store {
		db, err := database.NewPostgresDB(dsn)
		require.NoError(t, err)
		store := gormrepo.NewStore(db)
		t.Cleanup(func() { _ = store.Close() })
		truncate(context.Background(), t)
		return store
	})
}
