package source

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/cdo/internal/record"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite imports records from a table of an existing SQLite database.
// The database is opened read-only and never modified.
//
// Expected columns:
//
//	id          INTEGER NOT NULL
//	name        TEXT    NOT NULL
//	description TEXT             -- nullable
//	master_id   INTEGER          -- nullable
//	attributes  TEXT             -- nullable JSON object
//
// Rows are read in rowid order.
func LoadSQLite(ctx context.Context, path, table string) (*Dataset, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, &LoadError{Code: ErrCodeQueryFailed, Message: fmt.Sprintf("invalid table name %q", table)}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, readError(path, err)
	}

	dsn := (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to open database: %v", err), Err: err}
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to connect to database: %v", err), Err: err}
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, master_id, attributes
		FROM %s
		ORDER BY rowid ASC`, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeQueryFailed, Message: fmt.Sprintf("query %s: %v", table, err), Err: err}
	}
	defer rows.Close()

	var raws []rawRecord
	for rows.Next() {
		raw, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeQueryFailed, Message: fmt.Sprintf("iterate %s: %v", table, err), Err: err}
	}

	objects, err := build(raws)
	if err != nil {
		return nil, err
	}
	return &Dataset{Name: table, Path: path, Records: objects}, nil
}

func scanRecord(rows *sql.Rows) (rawRecord, error) {
	var (
		raw         rawRecord
		id          int64
		description sql.NullString
		masterID    sql.NullInt64
		attrsJSON   sql.NullString
	)
	if err := rows.Scan(&id, &raw.Name, &description, &masterID, &attrsJSON); err != nil {
		return raw, &LoadError{Code: ErrCodeQueryFailed, Message: fmt.Sprintf("scan row: %v", err), Err: err}
	}
	raw.ID = record.ID(id)
	raw.Description = description.String
	if masterID.Valid {
		m := record.ID(masterID.Int64)
		raw.Master = &m
	}

	raw.Attributes = record.Struct{}
	if attrsJSON.Valid && attrsJSON.String != "" {
		attrs, err := decodeAttributes(attrsJSON.String)
		if err != nil {
			return raw, &LoadError{
				Code:    ErrCodeInvalidRecord,
				Message: fmt.Sprintf("record %d: attributes: %v", id, err),
				Err:     err,
			}
		}
		raw.Attributes = attrs
	}
	return raw, nil
}

// decodeAttributes parses a JSON object, keeping integers exact.
func decodeAttributes(data string) (record.Struct, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return toStruct(m)
}
