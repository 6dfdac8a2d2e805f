package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a malformed url", func(t *testing.T) {
		pool, err := Connect(ctx, "invalid://connection")
		require.Error(t, err)
		require.Nil(t, pool)
	})

	t.Run("fails when the server is unreachable", func(t *testing.T) {
		pool, err := Connect(ctx, "postgres://localhost:59999/nonexistent?connect_timeout=1")
		require.Error(t, err)
		require.Nil(t, pool)
	})

	t.Run("sessions identify the application and run in UTC", func(t *testing.T) {
		pool := TestPool(t)

		var app, tz string
		require.NoError(t, pool.QueryRow(ctx, `SELECT current_setting('application_name'), current_setting('TimeZone')`).Scan(&app, &tz))
		require.Equal(t, ApplicationName, app)
		require.Equal(t, "UTC", tz)
	})
}
