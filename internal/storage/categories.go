package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

func (q *Queries) CreateCategory(ctx context.Context, c *core.Category) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name, type, is_active)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		c.OwnerID, c.Name, string(c.Type), c.Active).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (q *Queries) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	var c core.Category
	var typ string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, is_active FROM categories
		WHERE id = ? AND user_id = ?`, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.Active)
	if err == sql.ErrNoRows {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

// ListCategories returns the owner's active categories, optionally
// restricted to one type. Ordered by type then name.
func (q *Queries) ListCategories(ctx context.Context, ownerID int64, typ core.CategoryType) ([]core.Category, error) {
	query := `SELECT id, user_id, name, type, is_active FROM categories
		WHERE user_id = ? AND is_active = 1`
	args := []any{ownerID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY type, name`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var t string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &t, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(t)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Active, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "category", c.ID)
}
