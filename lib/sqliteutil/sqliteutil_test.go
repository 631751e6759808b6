package sqliteutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);`

func TestLibsqlConfigFileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := LibsqlConfig{File: path}.OpenDB(testSchema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO kv (k, v) VALUES ('a', 'b')`)
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v))
	require.Equal(t, "b", v)

	// reopening applies the schema against existing tables without error
	again, err := LibsqlConfig{File: path}.OpenDB(testSchema)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestLibsqlConfigRequiresTarget(t *testing.T) {
	_, err := LibsqlConfig{}.OpenDB(testSchema)
	require.Error(t, err)
}
