package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cssbattle/championship/internal/config"
	"github.com/cssbattle/championship/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// openTestPostgres connects to TEST_DATABASE_URL and skips when unset.
func openTestPostgres(t *testing.T, opts Options) *Postgres {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := OpenPool(ctx, config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewPostgres(pool, opts)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestPostgres_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := openTestPostgres(t, Options{CreateMissingGroups: true})

	group := "T-" + uuid.NewString()[:8]
	email := uuid.NewString() + "@example.com"

	res, err := store.SavePlayers(ctx, []core.PlayerRecord{
		{FullName: "Ana", Email: email, GroupName: group, Verified: true},
	})
	require.NoError(t, err)
	require.Equal(t, core.SaveResult{Inserted: 1, GroupsCreated: 1}, res)

	res, err = store.SavePlayers(ctx, []core.PlayerRecord{
		{FullName: "Ana B", Email: email, GroupName: group},
	})
	require.NoError(t, err)
	require.Equal(t, core.SaveResult{Updated: 1}, res)

	players, err := store.ListPlayers(ctx, group)
	require.NoError(t, err)
	require.Len(t, players, 1)
	require.Equal(t, "Ana B", players[0].FullName)
	require.False(t, players[0].Verified)

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Contains(t, groups, group)
}

func TestPostgres_UnknownGroupRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openTestPostgres(t, Options{CreateMissingGroups: false})

	group := "T-" + uuid.NewString()[:8]
	_, err := store.SavePlayers(ctx, []core.PlayerRecord{
		{FullName: "Ana", Email: uuid.NewString() + "@example.com", GroupName: group},
	})
	require.ErrorIs(t, err, core.ErrUnknownGroup)

	players, err := store.ListPlayers(ctx, group)
	require.NoError(t, err)
	require.Empty(t, players)
}
