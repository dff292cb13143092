package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/models"
)

type ProductRepo struct {
	*Repository[models.Product]
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{Repository: NewRepository[models.Product](db, OwnerColumn, "product")}
}

// ListActive is the public catalog view: active products of every owner.
func (r *ProductRepo) ListActive(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count product")
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, translate(err, "list product")
	}
	return items, total, nil
}

// GetManyActive keeps the order of ids and skips ids that are missing or inactive.
func (r *ProductRepo) GetManyActive(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&found).Error; err != nil {
		return nil, translate(err, "list product")
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}
