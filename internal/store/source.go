package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const sourceColumns = `key, position, country, tier, url, strategy, keywords, section_heading,
	image_selector, label, notes, enabled, last_hash, last_checked_at, created_at, updated_at`

// UpsertSource inserts or updates the registry fields of src. Scan state
// (LastHash, LastCheckedAt) of an existing row is left untouched.
func (s *Store) UpsertSource(ctx context.Context, src *Source) error {
	kw, err := json.Marshal(nonNil(src.Keywords))
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	now := s.now().UnixMilli()
	if src.CreatedAt == 0 {
		src.CreatedAt = now
	}
	src.UpdatedAt = now

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO sources (key, position, country, tier, url, strategy, keywords, section_heading,
			image_selector, label, notes, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			position = excluded.position,
			country = excluded.country,
			tier = excluded.tier,
			url = excluded.url,
			strategy = excluded.strategy,
			keywords = excluded.keywords,
			section_heading = excluded.section_heading,
			image_selector = excluded.image_selector,
			label = excluded.label,
			notes = excluded.notes,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		src.Key, src.Position, src.Country, src.Tier, src.URL, string(src.Strategy), string(kw),
		src.SectionHeading, src.ImageSelector, src.Label, src.Notes, boolToInt(src.Enabled),
		src.CreatedAt, src.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert source %s: %w", src.Key, err)
	}
	return nil
}

// GetSource returns the source with key, or ErrNotFound.
func (s *Store) GetSource(ctx context.Context, key string) (*Source, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE key = ?`, key)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", key, err)
	}
	return src, nil
}

// ListSources returns all sources in registry order.
func (s *Store) ListSources(ctx context.Context) ([]*Source, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY position, key`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []*Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// DeleteSource removes the source with key.
func (s *Store) DeleteSource(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.DB.ExecContext(ctx, `DELETE FROM sources WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete source %s: %w", key, err)
	}
	return expectOne(res, "source "+key)
}

// SaveSourceState records the outcome of a scan: the fingerprint and the
// time of the check. Only these two columns of the one row are written.
func (s *Store) SaveSourceState(ctx context.Context, key, fingerprint string, checkedAt time.Time) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.DB.ExecContext(ctx,
		`UPDATE sources SET last_hash = ?, last_checked_at = ? WHERE key = ?`,
		fingerprint, checkedAt.UnixMilli(), key,
	)
	if err != nil {
		return fmt.Errorf("save source state %s: %w", key, err)
	}
	return expectOne(res, "source "+key)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var (
		src      Source
		strategy string
		kw       string
		enabled  int
		checked  sql.NullInt64
	)
	err := row.Scan(&src.Key, &src.Position, &src.Country, &src.Tier, &src.URL, &strategy, &kw,
		&src.SectionHeading, &src.ImageSelector, &src.Label, &src.Notes, &enabled,
		&src.LastHash, &checked, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		return nil, err
	}
	src.Strategy = Strategy(strategy)
	src.Enabled = enabled != 0
	if checked.Valid {
		v := checked.Int64
		src.LastCheckedAt = &v
	}
	if err := json.Unmarshal([]byte(kw), &src.Keywords); err != nil {
		return nil, fmt.Errorf("keywords of %s: %w", src.Key, err)
	}
	if len(src.Keywords) == 0 {
		src.Keywords = nil
	}
	return &src, nil
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
