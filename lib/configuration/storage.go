package configuration

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Storage points at the database holding rankings, alerts and users.
// A plain file path opens an embedded sqlite database, a url opens a
// remote libsql database.
type Storage struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Storage) OpenDB(schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("storage config: either file or url must be set")
		}
		db, err = sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, err
		}
	} else {
		url := config.Url
		if config.AuthToken != "" {
			url = fmt.Sprintf("%s?authToken=%s", url, config.AuthToken)
		}
		db, err = sql.Open("libsql", url)
		if err != nil {
			return nil, err
		}
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}
	return db, nil
}
