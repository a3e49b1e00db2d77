package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, path, ext, title, category, length, date, duration, media_type,
	label, description, mark, rating, flag, option, created_at, updated_at`

// Upsert inserts rec or, on a path conflict, updates only its file-derived
// columns; Label, Description, Mark, Rating, Flag and Option are never
// touched by a conflicting upsert.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	start := time.Now()
	tx, txStart, err := s.BeginBatch(ctx)
	if err != nil {
		recordQuery("upsert", start, err)
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (path, ext, title, category, length, date, duration, media_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'), strftime('%s', 'now'))
		ON CONFLICT(path) DO UPDATE SET
			ext = excluded.ext,
			title = excluded.title,
			category = excluded.category,
			length = excluded.length,
			date = excluded.date,
			duration = excluded.duration,
			media_type = excluded.media_type,
			updated_at = strftime('%s', 'now')
	`,
		rec.Path, rec.Ext, rec.Title, rec.Category, rec.Length, rec.Date, rec.Duration, string(rec.MediaType()),
	)

	if endErr := s.EndBatch(tx, txStart, err); endErr != nil {
		recordQuery("upsert", start, endErr)
		return fmt.Errorf("store: upsert %s: %w", rec.Path, endErr)
	}
	recordQuery("upsert", start, nil)
	return nil
}

// GetByID returns the record with the given ID, or sql.ErrNoRows.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	recordQuery("get_by_id", start, err)
	return rec, err
}

// GetByPath returns the record at the given path, or sql.ErrNoRows.
func (s *Store) GetByPath(ctx context.Context, path string) (*Record, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE path = ?`, path)
	rec, err := scanRecord(row)
	recordQuery("get_by_path", start, err)
	return rec, err
}

// GetByPaths returns the records at any of the given paths. Paths with no
// matching record are simply absent from the result.
func (s *Store) GetByPaths(ctx context.Context, paths []string) ([]Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	start := time.Now()
	query := `SELECT ` + recordColumns + ` FROM records WHERE path IN (` + placeholders(len(paths)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toArgs(paths)...)
	if err != nil {
		recordQuery("get_by_paths", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_by_paths", start, err)
	return recs, err
}

// GetAll returns every record in the store.
func (s *Store) GetAll(ctx context.Context) ([]Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records`)
	if err != nil {
		recordQuery("get_all", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_all", start, err)
	return recs, err
}

// GetByFlag returns every record with the given Flag value.
func (s *Store) GetByFlag(ctx context.Context, flag int) ([]Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE flag = ?`, flag)
	if err != nil {
		recordQuery("get_by_flag", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_by_flag", start, err)
	return recs, err
}

// GetByRating returns every record with Rating >= min.
func (s *Store) GetByRating(ctx context.Context, min int) ([]Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE rating >= ?`, min)
	if err != nil {
		recordQuery("get_by_rating", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_by_rating", start, err)
	return recs, err
}

// SearchByLabel returns every record whose Label contains substring,
// case-insensitively.
func (s *Store) SearchByLabel(ctx context.Context, substring string) ([]Record, error) {
	start := time.Now()
	pattern := "%" + strings.ReplaceAll(substring, "%", "\\%") + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE label LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		recordQuery("search_by_label", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("search_by_label", start, err)
	return recs, err
}

// GetCreatedSince returns every record created at or after t.
func (s *Store) GetCreatedSince(ctx context.Context, t time.Time) ([]Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE created_at >= ?`, t.Unix())
	if err != nil {
		recordQuery("get_created_since", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_created_since", start, err)
	return recs, err
}

// GetUpdatedSince returns every record updated at or after t.
func (s *Store) GetUpdatedSince(ctx context.Context, t time.Time) ([]Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE updated_at >= ?`, t.Unix())
	if err != nil {
		recordQuery("get_updated_since", start, err)
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	recordQuery("get_updated_since", start, err)
	return recs, err
}

// Delete removes the record at path, if any.
func (s *Store) Delete(ctx context.Context, path string) error {
	start := time.Now()
	tx, txStart, err := s.BeginBatch(ctx)
	if err != nil {
		recordQuery("delete", start, err)
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM records WHERE path = ?`, path)
	if endErr := s.EndBatch(tx, txStart, err); endErr != nil {
		recordQuery("delete", start, endErr)
		return fmt.Errorf("store: delete %s: %w", path, endErr)
	}
	recordQuery("delete", start, nil)
	return nil
}

// DeleteMany removes the records at any of the given paths.
func (s *Store) DeleteMany(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	start := time.Now()
	tx, txStart, err := s.BeginBatch(ctx)
	if err != nil {
		recordQuery("delete_many", start, err)
		return err
	}

	query := `DELETE FROM records WHERE path IN (` + placeholders(len(paths)) + `)`
	_, err = tx.ExecContext(ctx, query, toArgs(paths)...)
	if endErr := s.EndBatch(tx, txStart, err); endErr != nil {
		recordQuery("delete_many", start, endErr)
		return fmt.Errorf("store: delete_many: %w", endErr)
	}
	recordQuery("delete_many", start, nil)
	return nil
}

// UpdatePath atomically renames a record's path and title, bumping
// updated_at. A no-op (no error) if no record exists at oldPath.
func (s *Store) UpdatePath(ctx context.Context, oldPath, newPath, newTitle string) error {
	start := time.Now()
	tx, txStart, err := s.BeginBatch(ctx)
	if err != nil {
		recordQuery("update_path", start, err)
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE records SET path = ?, title = ?, updated_at = strftime('%s', 'now')
		WHERE path = ?
	`, newPath, newTitle, oldPath)

	if endErr := s.EndBatch(tx, txStart, err); endErr != nil {
		recordQuery("update_path", start, endErr)
		return fmt.Errorf("store: update_path %s -> %s: %w", oldPath, newPath, endErr)
	}
	recordQuery("update_path", start, nil)
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var rec Record
	var createdAt, updatedAt int64

	err := row.Scan(
		&rec.ID, &rec.File.Path, &rec.File.Ext, &rec.File.Title, &rec.File.Category,
		&rec.File.Length, &rec.File.Date, &rec.File.Duration, new(string),
		&rec.Label, &rec.Description, &rec.Mark, &rec.Rating, &rec.Flag, &rec.Option,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(paths []string) []any {
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p
	}
	return args
}
