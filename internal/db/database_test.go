package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	gdb, err := Open(context.Background(), DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, Migrate(gdb))

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T table missing", m)
	}
	require.NoError(t, Ping(context.Background(), gdb))
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), DriverPostgres, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestDialector_NormalisesPostgresURL(t *testing.T) {
	t.Parallel()

	d, err := dialector(DriverPostgres, "postgres://shop:secret@db:5432/shop?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = dialector(DriverPostgres, "postgres://%zz")
	require.Error(t, err)
}
