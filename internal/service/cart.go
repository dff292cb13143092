package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/cache"
	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/internal/mykafka"
	"github.com/Skotchmaster/unimart/internal/repo"
	"github.com/Skotchmaster/unimart/internal/uow"
	"github.com/Skotchmaster/unimart/internal/validators"
)

type CartService struct {
	UoW      *uow.Factory
	Products *ProductService
	Cache    cache.CartCache
	Events   mykafka.Publisher

	sfg singleflight.Group
}

type CartAdd struct {
	ProductID uint
	Quantity  int
}

// Add puts one product into owner's cart, pricing it from the current
// product price.
func (s *CartService) Add(ctx context.Context, owner uint, in CartAdd) (*models.CartItem, error) {
	var line *models.CartItem
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		if line, err = s.addOne(ctx, u, owner, in); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, owner, mykafka.CartItemAdded, line)
	return line, nil
}

// AddMany adds every item in one scope: either all lines are stored or none.
func (s *CartService) AddMany(ctx context.Context, owner uint, in []CartAdd) ([]models.CartItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("at least one item is required: %w", apperr.ErrValidation)
	}
	seen := make(map[uint]struct{}, len(in))
	for _, item := range in {
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("product %d is repeated in request: %w", item.ProductID, apperr.ErrConflict)
		}
		seen[item.ProductID] = struct{}{}
	}

	lines := make([]models.CartItem, 0, len(in))
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		for _, item := range in {
			line, err := s.addOne(ctx, u, owner, item)
			if err != nil {
				return err
			}
			lines = append(lines, *line)
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}

	for i := range lines {
		s.afterWrite(ctx, owner, mykafka.CartItemAdded, &lines[i])
	}
	return lines, nil
}

func (s *CartService) addOne(ctx context.Context, u *uow.UnitOfWork, owner uint, in CartAdd) (*models.CartItem, error) {
	if err := validators.AddQuantity(in.Quantity); err != nil {
		return nil, err
	}
	product, err := s.isInCart(ctx, u, owner, in.ProductID)
	if err != nil {
		return nil, err
	}

	line := &models.CartItem{
		ProductID: product.ID,
		OwnerID:   owner,
		Quantity:  in.Quantity,
		Price:     linePrice(product.Price, in.Quantity),
		IsActive:  true,
	}
	if _, err := u.Cart.Add(ctx, line); err != nil {
		switch {
		case errors.Is(err, repo.ErrUniqueViolation):
			return nil, fmt.Errorf("product is already in cart: %w", apperr.ErrConflict)
		case errors.Is(err, repo.ErrForeignKeyViolation):
			return nil, fmt.Errorf("product not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return line, nil
}

// isInCart resolves the product for owner and fails with Conflict when an
// active line for it already exists.
func (s *CartService) isInCart(ctx context.Context, u *uow.UnitOfWork, owner, productID uint) (*models.Product, error) {
	product, err := s.Products.GetIn(ctx, u, productID, owner)
	if err != nil {
		return nil, err
	}
	existing, err := u.Cart.GetByProductID(ctx, productID, owner)
	if err != nil {
		return nil, err
	}
	if err := validators.ProductInCart(existing); err != nil {
		return nil, err
	}
	return product, nil
}

// GetAll serves owner's lines from the cache when present. Concurrent misses
// for one owner share a single store read.
func (s *CartService) GetAll(ctx context.Context, owner uint) ([]models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.get_all", "user_id", owner)

	items, err := s.Cache.Get(ctx, owner)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn("cache_get_failed", "error", err)
	}

	v, err, _ := s.sfg.Do(strconv.FormatUint(uint64(owner), 10), func() (any, error) {
		// the fill is shared by every collapsed caller
		fillCtx := context.WithoutCancel(ctx)

		var lines []models.CartItem
		err := s.UoW.Do(fillCtx, func(u *uow.UnitOfWork) error {
			var err error
			lines, err = u.Cart.GetAll(fillCtx, owner)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := s.Cache.Set(fillCtx, owner, lines); err != nil {
			l.Warn("cache_set_failed", "error", err)
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CartItem), nil
}

func (s *CartService) Get(ctx context.Context, owner, productID uint) (*models.CartItem, error) {
	var line *models.CartItem
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		line, err = u.Cart.GetByProductID(ctx, productID, owner)
		if err != nil {
			return err
		}
		if line == nil {
			return fmt.Errorf("product not found in cart: %w", apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Update changes the quantity of an existing line and reprices it.
func (s *CartService) Update(ctx context.Context, owner, productID uint, quantity int) (*models.CartItem, error) {
	if err := validators.UpdateQuantity(quantity); err != nil {
		return nil, err
	}

	var line *models.CartItem
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		product, err := s.Products.GetIn(ctx, u, productID, owner)
		if err != nil {
			return err
		}
		existing, err := u.Cart.GetByProductID(ctx, productID, owner)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("product not found in cart: %w", apperr.ErrNotFound)
		}

		fields := map[string]any{
			"quantity": quantity,
			"price":    linePrice(product.Price, quantity),
		}
		if _, err := u.Cart.UpdateByProductID(ctx, productID, fields, owner); err != nil {
			return err
		}
		if line, err = u.Cart.GetByProductID(ctx, productID, owner); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, owner, mykafka.CartItemUpdated, line)
	return line, nil
}

// Delete removes the line for productID. Missing lines are not an error.
func (s *CartService) Delete(ctx context.Context, owner, productID uint) error {
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		if err := u.Cart.DeleteByProductID(ctx, productID, owner); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, owner, mykafka.CartItemRemoved, &models.CartItem{ProductID: productID, OwnerID: owner})
	return nil
}

func (s *CartService) DeleteAll(ctx context.Context, owner uint) error {
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		if _, err := u.Cart.DeleteAllByOwner(ctx, owner); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, owner, mykafka.CartCleared, nil)
	return nil
}

// TotalPrice sums owner's active lines. An empty cart is NotFound.
func (s *CartService) TotalPrice(ctx context.Context, owner uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		total, err = u.Cart.TotalPrice(ctx, owner)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, fmt.Errorf("cart is empty: %w", apperr.ErrNotFound)
	}
	return total.Decimal, nil
}

func linePrice(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

func (s *CartService) afterWrite(ctx context.Context, owner uint, eventType string, line *models.CartItem) {
	l := logging.FromContext(ctx).With("svc", "cart.events", "user_id", owner)

	if err := s.Cache.Delete(ctx, owner); err != nil {
		l.Warn("cache_invalidate_failed", "error", err)
	}

	if s.Events == nil {
		return
	}
	event := mykafka.CartEvent{Type: eventType, UserID: owner, OccurredAt: time.Now().UTC()}
	if line != nil {
		event.ProductID = line.ProductID
		event.Quantity = line.Quantity
		if eventType != mykafka.CartItemRemoved {
			event.Price = line.Price.String()
		}
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicCart, strconv.FormatUint(uint64(owner), 10), event); err != nil {
		l.Error("publish_failed", "type", eventType, "error", err)
	}
}
