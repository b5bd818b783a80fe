package datarecording

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// A DataReader reads back the contents of a recorded results database.
type DataReader interface {
	// ListTables returns the names of the tables in the database.
	ListTables() ([]string, error)

	// ReadRows returns every row of a table, one column-name-to-value
	// map per row.
	ReadRows(tableName string) ([]map[string]any, error)

	// Close closes the database.
	Close() error
}

// NewReader opens the results database at path (without the .sqlite3
// suffix).
func NewReader(path string) (DataReader, error) {
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("results database %s not found", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return &sqliteReader{DB: db}, nil
}

type sqliteReader struct {
	*sql.DB
}

func (r *sqliteReader) ListTables() ([]string, error) {
	rows, err := r.Query(
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (r *sqliteReader) ReadRows(tableName string) ([]map[string]any, error) {
	tables, err := r.ListTables()
	if err != nil {
		return nil, err
	}

	known := false
	for _, t := range tables {
		if t == tableName {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	rows, err := r.Query("SELECT * FROM " + tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// Text comes back as a byte slice; JSON would base64 it.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
