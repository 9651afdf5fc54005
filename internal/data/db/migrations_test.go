package db

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func tableExists(t *testing.T, conn *sql.DB, table string) bool {
	t.Helper()
	var n int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestOpen_AppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	s, err := newSchema(ctx, database.Conn())
	require.NoError(t, err)
	done, err := s.applied(ctx)
	require.NoError(t, err)

	all, err := embeddedMigrations()
	require.NoError(t, err)
	assert.Len(t, done, len(all))

	assert.True(t, tableExists(t, database.Conn(), "records"))
	assert.True(t, tableExists(t, database.Conn(), "notifications"))

	// Nothing pending on a second pass.
	require.NoError(t, migrateUp(ctx, database.Conn()))
}

func TestOpen_ExistingDataSurvives(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db1, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, db1.Queries().InsertRecord(ctx, Record{ID: "q-1", Kind: "quote", Payload: "{}", CreatedAt: 1}))
	require.NoError(t, db1.Close())

	db2, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	n, err := db2.Queries().CountRecords(ctx, "quote")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMigrateDown(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	conn := database.Conn()
	require.NoError(t, database.Queries().InsertRecord(ctx, Record{ID: "q-1", Kind: "quote", Payload: "{}", CreatedAt: 1}))

	require.NoError(t, MigrateDown(ctx, conn, 1))
	assert.False(t, tableExists(t, conn, "notifications"))
	assert.True(t, tableExists(t, conn, "records"))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM records").Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, migrateUp(ctx, conn))
	assert.True(t, tableExists(t, conn, "notifications"))
}

func TestMigrateDown_Bounds(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	all, err := embeddedMigrations()
	require.NoError(t, err)

	for _, n := range []int{0, -1, len(all) + 1} {
		assert.Error(t, MigrateDown(ctx, database.Conn(), n), "n=%d", n)
	}
}

func TestReadMigrations(t *testing.T) {
	all, err := embeddedMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for i, m := range all {
		assert.NotEmpty(t, m.up)
		assert.NotEmpty(t, m.down)
		if i > 0 {
			assert.Greater(t, m.version, all[i-1].version)
		}
	}

	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"m/0010_b.up.sql":   {Data: []byte("b")},
				"m/0010_b.down.sql": {Data: []byte("b")},
				"m/0002_a.up.sql":   {Data: []byte("a")},
				"m/0002_a.down.sql": {Data: []byte("a")},
			},
			want: []int{2, 10},
		},
		{
			name:    "missing down",
			files:   fstest.MapFS{"m/0001_a.up.sql": {Data: []byte("a")}},
			wantErr: "needs both up and down",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/0001_a.up.sql":   {Data: []byte("a")},
				"m/0001_b.up.sql":   {Data: []byte("b")},
				"m/0001_a.down.sql": {Data: []byte("a")},
			},
			wantErr: "duplicate migration",
		},
		{
			name:    "bad name",
			files:   fstest.MapFS{"m/readme.md": {Data: []byte("x")}},
			wantErr: "readme.md",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMigrations(tt.files, "m")
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			versions := make([]int, len(got))
			for i, m := range got {
				versions[i] = m.version
			}
			assert.Equal(t, tt.want, versions)
		})
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		in      string
		want    migrationFile
		wantErr bool
	}{
		{in: "0001_records.up.sql", want: migrationFile{version: 1, name: "records", up: true}},
		{in: "0002_notifications.down.sql", want: migrationFile{version: 2, name: "notifications"}},
		{in: "0100_two_words.up.sql", want: migrationFile{version: 100, name: "two_words", up: true}},
		{in: "0001_records.sql", wantErr: true},
		{in: "0000_zero.up.sql", wantErr: true},
		{in: "x_nan.up.sql", wantErr: true},
		{in: "0001_.down.sql", wantErr: true},
		{in: "0001.up.sql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMigrationName(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, errBadMigrationName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
