package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/hazyhaar/recallwatch/dbopen"
)

// AppendSnapshot stores snap, computing its Diff against the newest
// retained snapshot of the same source, then evicts the oldest snapshots
// beyond the retention bound. RawText and Markdown are truncated to
// MaxSnapshotText runes.
func (s *Store) AppendSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.ID == "" {
		snap.ID = s.newID()
	}
	if snap.TakenAt == 0 {
		snap.TakenAt = s.now().UnixMilli()
	}
	snap.RawText = truncateRunes(snap.RawText, MaxSnapshotText)
	snap.Markdown = truncateRunes(snap.Markdown, MaxSnapshotText)
	datesJSON, err := json.Marshal(nonNil(snap.ExtractedDates))
	if err != nil {
		return fmt.Errorf("marshal dates: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		var prev string
		err := tx.QueryRowContext(ctx,
			`SELECT raw_text FROM snapshots WHERE source_key = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
			snap.SourceKey,
		).Scan(&prev)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("previous snapshot: %w", err)
		default:
			snap.Diff = DiffText(prev, snap.RawText)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (id, source_key, taken_at, hash, raw_text, markdown, extracted_dates, diff)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, snap.SourceKey, snap.TakenAt, snap.Hash, snap.RawText, snap.Markdown,
			string(datesJSON), snap.Diff,
		); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM snapshots WHERE id NOT IN (
				SELECT id FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT ?
			)`, s.retention,
		); err != nil {
			return fmt.Errorf("trim snapshots: %w", err)
		}
		return nil
	})
}

// ListSnapshots returns retained snapshots newest first, filtered by
// sourceKey unless it is empty.
func (s *Store) ListSnapshots(ctx context.Context, sourceKey string) ([]*Snapshot, error) {
	query := `SELECT id, source_key, taken_at, hash, raw_text, markdown, extracted_dates, diff FROM snapshots`
	var args []any
	if sourceKey != "" {
		query += ` WHERE source_key = ?`
		args = append(args, sourceKey)
	}
	query += ` ORDER BY taken_at DESC, id DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var (
			snap      Snapshot
			datesJSON string
		)
		if err := rows.Scan(&snap.ID, &snap.SourceKey, &snap.TakenAt, &snap.Hash, &snap.RawText,
			&snap.Markdown, &datesJSON, &snap.Diff); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(datesJSON), &snap.ExtractedDates); err != nil {
			return nil, fmt.Errorf("snapshot %s dates: %w", snap.ID, err)
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

// DiffText renders the changes from old to cur as plain text: insertions
// as {+text+}, deletions as [-text-], and unchanged runs elided to their
// edges.
func DiffText(old, cur string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, cur, true))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(elide(d.Text, 30))
		}
	}
	return sb.String()
}

func elide(s string, edge int) string {
	r := []rune(s)
	if len(r) <= 2*edge+3 {
		return s
	}
	return string(r[:edge]) + "..." + string(r[len(r)-edge:])
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
