package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// SeedResult reports one loaded seed file.
type SeedResult struct {
	File  string `json:"file" yaml:"file"`
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
	Rows  int64  `json:"rows" yaml:"rows"`
}

// SeedFiles lists the .sql and .csv files of dir in name order. A
// missing directory yields no files.
func SeedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".sql", ".csv":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile loads a seed file. A .csv file is loaded into the table named
// by its base name; a .sql file is executed as a script. With replace,
// the table's rows are deleted before a CSV load.
func (s *Store) LoadFile(ctx context.Context, path string, replace bool) (SeedResult, error) {
	res := SeedResult{File: path}
	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open seed %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		res.Table = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res.Rows, err = s.LoadCSV(ctx, res.Table, f, replace)
	case ".sql":
		var script []byte
		if script, err = io.ReadAll(f); err == nil {
			res.Rows, err = s.ExecScript(ctx, string(script))
		}
	default:
		err = &core.ValidationError{Field: "seed", Reason: fmt.Sprintf("unsupported seed file type %q", ext)}
	}
	if err != nil {
		return res, fmt.Errorf("seed %s: %w", filepath.Base(path), err)
	}
	return res, nil
}

// ExecScript runs a multi-statement SQL script in one transaction and
// returns the rows affected.
func (s *Store) ExecScript(ctx context.Context, script string) (int64, error) {
	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, script)
		if err != nil {
			return adapter.Classify(err, script, adapter.ClassifyMessage)
		}
		total, _ = res.RowsAffected()
		return nil
	})
	return total, err
}

// LoadCSV inserts the records of r into table. The header row names the
// columns, which must exist in the table. Empty fields are stored as NULL.
// The load runs in one transaction.
func (s *Store) LoadCSV(ctx context.Context, table string, r io.Reader, replace bool) (int64, error) {
	cols, err := s.TableSchema(ctx, table)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, &core.SchemaMismatchError{Err: fmt.Errorf("no such table: %s", table)}
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[strings.ToLower(c.Name)] = true
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, &core.ValidationError{Field: "csv", Reason: "missing header row"}
		}
		return 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	quoted := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if !known[strings.ToLower(h)] {
			return 0, &core.SchemaMismatchError{Err: fmt.Errorf("table %s has no column %q", table, h)}
		}
		quoted[i] = quoteIdent(h)
		marks[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	var n int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if replace {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(table)); err != nil {
				return adapter.Classify(err, "DELETE FROM "+table, adapter.ClassifyMessage)
			}
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return adapter.Classify(err, insert, adapter.ClassifyMessage)
		}
		defer func() { _ = stmt.Close() }()

		args := make([]any, len(header))
		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read csv: %w", err)
			}
			for i := range args {
				args[i] = nil
				if i < len(rec) && rec[i] != "" {
					args[i] = rec[i]
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				line, _ := cr.FieldPos(0)
				return fmt.Errorf("line %d: %w", line, adapter.Classify(err, insert, adapter.ClassifyMessage))
			}
			n++
		}
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("csv loaded", slog.String("table", table), slog.Int64("rows", n))
	return n, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if s.readOnly {
		return &core.ValidationError{Field: "store", Reason: "analytics database is open read-only"}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
