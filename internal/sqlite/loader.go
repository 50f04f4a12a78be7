package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// jsonlTableMapping lists each table with the columns read from its JSONL
// file. Records are inserted with their stored ids so references survive a
// reload.
var jsonlTableMapping = []struct {
	table   string
	columns []string
}{
	{tablePosts, []string{"id", "post_type", "title", "name", "status", "content", "guid", "author_id", "post_date", "post_modified"}},
	{tablePostMeta, []string{"id", "post_id", "meta_key", "meta_value"}},
	{tableTerms, []string{"id", "taxonomy", "name", "slug", "description", "parent_id"}},
	{tableRelationships, []string{"id", "object_id", "term_id", "term_order"}},
	{tablePostTypes, []string{"slug", "one", "many", "supports", "public"}},
	{tableUsers, []string{"id", "login", "email", "display_name", "registered"}},
	{tableUserRoles, []string{"user_id", "role"}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching table. Loading is transactional: all tables load or the
// database stays empty. Malformed lines, records that violate constraints,
// and unknown fields are skipped.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range jsonlTableMapping {
		records, err := readJSONL(jsonlFile(dataDir, m.table))
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.table, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, m.table, m.columns, records); err != nil {
			return fmt.Errorf("loading %s: %w", m.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into table. Only the listed
// columns are extracted; a missing column inserts NULL, so a record without
// a required column is skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		obj, err := decodeRecord(rec)
		if err != nil {
			continue
		}
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = columnValue(obj[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}
	return nil
}

func decodeRecord(rec json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(rec))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// columnValue converts a decoded JSON value into a driver argument. Integers
// stay integers; nested values are re-encoded as JSON text.
func columnValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}
