package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/models"
)

type CartRepo struct {
	*Repository[models.CartItem]
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{Repository: NewRepository[models.CartItem](db, OwnerColumn, "cart item")}
}

func (r *CartRepo) activeLine(ctx context.Context, productID, owner uint) *gorm.DB {
	return r.owned(ctx, owner).Where("product_id = ? AND is_active = ?", productID, true)
}

// TotalPrice sums the active lines of owner. An empty cart yields Valid == false.
// Lines are added as decimals: SQLite keeps numeric columns as REAL and its
// SUM would be a float sum.
func (r *CartRepo) TotalPrice(ctx context.Context, owner uint) (decimal.NullDecimal, error) {
	rows, err := r.owned(ctx, owner).
		Model(&models.CartItem{}).
		Select("price").
		Where("is_active = ?", true).
		Rows()
	if err != nil {
		return decimal.NullDecimal{}, translate(err, "sum cart item")
	}
	defer rows.Close()

	var prices []decimal.Decimal
	for rows.Next() {
		var p decimal.Decimal
		if err := rows.Scan(&p); err != nil {
			return decimal.NullDecimal{}, translate(err, "sum cart item")
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return decimal.NullDecimal{}, translate(err, "sum cart item")
	}
	if len(prices) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NullDecimal{Decimal: decimal.Sum(prices[0], prices[1:]...), Valid: true}, nil
}

// GetByProductID returns nil, nil when owner has no active line for productID.
func (r *CartRepo) GetByProductID(ctx context.Context, productID, owner uint) (*models.CartItem, error) {
	var items []models.CartItem
	if err := r.activeLine(ctx, productID, owner).Limit(1).Find(&items).Error; err != nil {
		return nil, translate(err, "get cart item")
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *CartRepo) UpdateByProductID(ctx context.Context, productID uint, fields map[string]any, owner uint) (uint, error) {
	fields = r.writable(fields)
	delete(fields, "product_id")
	if len(fields) == 0 {
		line, err := r.GetByProductID(ctx, productID, owner)
		if err != nil {
			return 0, err
		}
		if line == nil {
			return 0, notFound("cart item")
		}
		return productID, nil
	}

	res := r.activeLine(ctx, productID, owner).Model(&models.CartItem{}).Updates(fields)
	if res.Error != nil {
		return 0, translate(res.Error, "update cart item")
	}
	if res.RowsAffected == 0 {
		return 0, notFound("cart item")
	}
	return productID, nil
}

func (r *CartRepo) DeleteByProductID(ctx context.Context, productID, owner uint) error {
	if err := r.activeLine(ctx, productID, owner).Delete(&models.CartItem{}).Error; err != nil {
		return translate(err, "delete cart item")
	}
	return nil
}

func (r *CartRepo) DeleteAllByOwner(ctx context.Context, owner uint) (int64, error) {
	res := r.owned(ctx, owner).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete cart item")
	}
	return res.RowsAffected, nil
}
