package store

import (
	"context"
	"fmt"
	"strings"
)

// AddItem registers it. ID and CreatedAt are assigned when empty. A second
// registration of the same model and MHD fails with ErrDuplicateItem.
func (s *Store) AddItem(ctx context.Context, it *Item) error {
	if it.ID == "" {
		it.ID = s.newID()
	}
	if it.CreatedAt == 0 {
		it.CreatedAt = s.now().UnixMilli()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE model_key = ? AND mhd = ?`, it.ModelKey, it.MHD,
	).Scan(&n); err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s %s: %w", it.ModelKey, it.MHD, ErrDuplicateItem)
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO items (id, model_key, model_label, mhd, created_at) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.ModelKey, it.ModelLabel, it.MHD, it.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%s %s: %w", it.ModelKey, it.MHD, ErrDuplicateItem)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// RemoveItem deletes the item with id, or returns ErrNotFound.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return expectOne(res, "item "+id)
}

// ListItems returns every registered item, oldest first.
func (s *Store) ListItems(ctx context.Context) ([]*Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, model_key, model_label, mhd, created_at FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ModelKey, &it.ModelLabel, &it.MHD, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
