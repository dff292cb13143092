package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/cache"
	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/internal/mykafka"
	"github.com/Skotchmaster/unimart/internal/uow"
	"github.com/Skotchmaster/unimart/internal/util"
	"github.com/Skotchmaster/unimart/internal/validators"
)

// ProductIndex is the search side of the catalog. A nil index disables search.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	SearchProducts(ctx context.Context, q string, from, size int) ([]uint, int64, error)
}

type ProductService struct {
	UoW    *uow.Factory
	Events mykafka.Publisher
	Index  ProductIndex
	// Carts is invalidated for the owner when a delete cascades to cart lines.
	Carts cache.CartCache
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	IsActive    *bool
}

func (p ProductPatch) fields() (map[string]any, error) {
	fields := map[string]any{}
	if p.Name != nil {
		if err := validators.ProductName(*p.Name); err != nil {
			return nil, err
		}
		fields["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		if err := validators.Price(*p.Price); err != nil {
			return nil, err
		}
		fields["price"] = *p.Price
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	return fields, nil
}

func (s *ProductService) Add(ctx context.Context, owner uint, in ProductInput) (*models.Product, error) {
	if err := validators.ProductName(in.Name); err != nil {
		return nil, err
	}
	if err := validators.Price(in.Price); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		OwnerID:     owner,
		IsActive:    in.IsActive,
	}
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		if _, err := u.Products.Add(ctx, p); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, mykafka.ProductCreated, p)
	return p, nil
}

func (s *ProductService) GetAll(ctx context.Context, owner uint) ([]models.Product, error) {
	var out []models.Product
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		out, err = u.Products.GetAll(ctx, owner)
		return err
	})
	return out, err
}

func (s *ProductService) Get(ctx context.Context, id, owner uint) (*models.Product, error) {
	var out *models.Product
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		out, err = s.GetIn(ctx, u, id, owner)
		return err
	})
	return out, err
}

// GetIn resolves a product inside a scope the caller already holds.
func (s *ProductService) GetIn(ctx context.Context, u *uow.UnitOfWork, id, owner uint) (*models.Product, error) {
	p, err := u.Products.Get(ctx, id, owner)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("product not found: %w", apperr.ErrNotFound)
	}
	return p, err
}

func (s *ProductService) Update(ctx context.Context, id, owner uint, patch ProductPatch) (*models.Product, error) {
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}

	var out *models.Product
	err = s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		if _, err := u.Products.Update(ctx, id, fields, owner); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("product not found: %w", apperr.ErrNotFound)
			}
			return err
		}
		var err error
		if out, err = u.Products.Get(ctx, id, owner); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, mykafka.ProductUpdated, out)
	return out, nil
}

// Delete succeeds whether or not the product existed.
func (s *ProductService) Delete(ctx context.Context, id, owner uint) error {
	var (
		deleted  *models.Product
		cascaded bool
	)
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		p, err := u.Products.Get(ctx, id, owner)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		line, err := u.Cart.GetByProductID(ctx, id, owner)
		if err != nil {
			return err
		}
		cascaded = line != nil
		if err := u.Products.Delete(ctx, id, owner); err != nil {
			return err
		}
		deleted = p
		return u.Commit()
	})
	if err != nil {
		return err
	}

	if deleted == nil {
		return nil
	}
	s.afterWrite(ctx, mykafka.ProductDeleted, deleted)
	if cascaded && s.Carts != nil {
		if err := s.Carts.Delete(ctx, owner); err != nil {
			logging.FromContext(ctx).Warn("cart_cache_invalidate_failed", "svc", "product.delete", "user_id", owner, "error", err)
		}
	}
	return nil
}

// Catalog lists active products of every owner.
func (s *ProductService) Catalog(ctx context.Context, page, size int) (util.Page[models.Product], error) {
	from, limit := util.Calculate(page, size)
	var (
		items []models.Product
		total int64
	)
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		items, total, err = u.Products.ListActive(ctx, from, limit)
		return err
	})
	if err != nil {
		return util.Page[models.Product]{}, err
	}
	return util.NewPage(items, total, from, limit), nil
}

func (s *ProductService) Search(ctx context.Context, q string, page, size int) (util.Page[models.Product], error) {
	from, limit := util.Calculate(page, size)
	q = strings.TrimSpace(q)
	if q == "" {
		return util.NewPage([]models.Product{}, 0, from, limit), nil
	}
	if s.Index == nil {
		return util.Page[models.Product]{}, fmt.Errorf("search is disabled: %w", apperr.ErrUnavailable)
	}

	ids, total, err := s.Index.SearchProducts(ctx, q, from, limit)
	if err != nil {
		return util.Page[models.Product]{}, fmt.Errorf("search products: %v: %w", err, apperr.ErrUnavailable)
	}

	var items []models.Product
	err = s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		items, err = u.Products.GetManyActive(ctx, ids)
		return err
	})
	if err != nil {
		return util.Page[models.Product]{}, err
	}
	return util.NewPage(items, total, from, limit), nil
}

// afterWrite runs only after a successful commit. Failures here are logged:
// the write itself already happened.
func (s *ProductService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	l := logging.FromContext(ctx).With("svc", "product.events", "product_id", p.ID)

	event := mykafka.ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		IsActive:   p.IsActive,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != mykafka.ProductDeleted {
		event.Price = p.Price.String()
	}
	if s.Events != nil {
		if err := s.Events.PublishEvent(ctx, mykafka.TopicProduct, strconv.FormatUint(uint64(p.ID), 10), event); err != nil {
			l.Error("publish_failed", "type", eventType, "error", err)
		}
	}

	if s.Index == nil {
		return
	}
	var err error
	if eventType == mykafka.ProductDeleted {
		err = s.Index.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Index.IndexProduct(ctx, *p)
	}
	if err != nil {
		l.Error("index_failed", "type", eventType, "error", err)
	}
}
