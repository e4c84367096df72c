package ledger

import (
	"context"

	"fintrack/internal/core"
)

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name string, typ core.CategoryType) (core.Category, error) {
	c := core.Category{OwnerID: ownerID, Name: name, Type: typ, Active: true}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.Queries().CreateCategory(ctx, &c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	return s.store.Queries().GetCategory(ctx, ownerID, id)
}

// ListCategories returns active categories, optionally one type only
// (empty type means both).
func (s *Service) ListCategories(ctx context.Context, ownerID int64, typ core.CategoryType) ([]core.Category, error) {
	return s.store.Queries().ListCategories(ctx, ownerID, typ)
}

// RenameCategory changes the name; the type is part of the category's
// identity and never changes after creation.
func (s *Service) RenameCategory(ctx context.Context, ownerID, id int64, name string) (core.Category, error) {
	c, err := s.store.Queries().GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, err
	}
	if name != "" {
		c.Name = name
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.Queries().UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeactivateCategory soft-deletes. Existing transactions keep their
// category reference.
func (s *Service) DeactivateCategory(ctx context.Context, ownerID, id int64) error {
	c, err := s.store.Queries().GetCategory(ctx, ownerID, id)
	if err != nil {
		return err
	}
	c.Active = false
	return s.store.Queries().UpdateCategory(ctx, c)
}
