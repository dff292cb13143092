// Package repo implements owner-scoped data access on top of gorm. Every
// query a repository issues carries the owner predicate; callers cannot
// widen it.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/apperr"
)

// Record is implemented by every persisted model.
type Record interface {
	PrimaryKey() uint
}

const OwnerColumn = "owner_id"

// protected columns are never written through Update.
var protected = []string{"id", "owner_id", "created_at"}

type Repository[T Record] struct {
	db          *gorm.DB
	ownerColumn string
	entity      string
}

func NewRepository[T Record](db *gorm.DB, ownerColumn, entity string) *Repository[T] {
	return &Repository[T]{db: db, ownerColumn: ownerColumn, entity: entity}
}

func (r *Repository[T]) owned(ctx context.Context, owner uint) *gorm.DB {
	return r.db.WithContext(ctx).Where(r.ownerColumn+" = ?", owner)
}

func (r *Repository[T]) Add(ctx context.Context, v *T) (uint, error) {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return 0, translate(err, "add "+r.entity)
	}
	return (*v).PrimaryKey(), nil
}

// GetAll returns an empty, non-nil slice when the owner has no rows.
func (r *Repository[T]) GetAll(ctx context.Context, owner uint) ([]T, error) {
	out := make([]T, 0)
	if err := r.owned(ctx, owner).Order("id").Find(&out).Error; err != nil {
		return nil, translate(err, "list "+r.entity)
	}
	return out, nil
}

func (r *Repository[T]) Get(ctx context.Context, id, owner uint) (*T, error) {
	var v T
	if err := r.owned(ctx, owner).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, translate(err, "get "+r.entity)
	}
	return &v, nil
}

func (r *Repository[T]) Update(ctx context.Context, id uint, fields map[string]any, owner uint) (uint, error) {
	fields = r.writable(fields)
	if len(fields) == 0 {
		if _, err := r.Get(ctx, id, owner); err != nil {
			return 0, err
		}
		return id, nil
	}

	res := r.owned(ctx, owner).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return 0, translate(res.Error, "update "+r.entity)
	}
	if res.RowsAffected == 0 {
		return 0, translate(gorm.ErrRecordNotFound, "update "+r.entity)
	}
	return id, nil
}

// Delete succeeds whether or not a row matched.
func (r *Repository[T]) Delete(ctx context.Context, id, owner uint) error {
	if err := r.owned(ctx, owner).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return translate(err, "delete "+r.entity)
	}
	return nil
}

func (r *Repository[T]) writable(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range protected {
		delete(out, k)
	}
	delete(out, r.ownerColumn)
	return out
}

func notFound(entity string) error {
	return fmt.Errorf("%s not found: %w", entity, apperr.ErrNotFound)
}

