package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	devenv "sunbridge-backend/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if needed) a local sqlite database and applies
// the given schema. Safe to call against a database that already has
// the schema.
func OpenDB(schema, path string) (*sql.DB, error) {
	dbpath := path
	if dbpath != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(path)
		if err != nil {
			return nil, err
		}

		_, err = os.Stat(dbpath)
		if os.IsNotExist(err) {
			f, err := os.Create(dbpath)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see https://stackoverflow.com/questions/35804884 for why sqlite
	// writes want a single connection + WAL
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}

	return db, nil
}

// LibsqlConfig points either at a local file or a remote turso/libsql
// database.
type LibsqlConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config LibsqlConfig) OpenDB(schema string) (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a database path was not specified")
		}
		return OpenDB(schema, config.File)
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	db, err := sql.Open("libsql", config.Url+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}
	return db, nil
}
