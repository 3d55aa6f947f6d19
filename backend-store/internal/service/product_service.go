package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ProductService defines the catalog operations
type ProductService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateProductRequest) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	// List pages the catalog. Anonymous callers and buyers see active
	// products only, sellers also see their own inactive ones and admins see
	// everything. viewer is nil for anonymous requests.
	List(ctx context.Context, viewer *Caller, q *dto.ProductListQuery) ([]*domain.Product, error)
	// Update applies a partial update. Only the seller or an admin may call it.
	Update(ctx context.Context, caller Caller, id int64, req *dto.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, caller Caller, id int64) error
}

type productService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, caller Caller, req *dto.CreateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.create")
	defer span.End()

	cond, err := domain.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, domain.ErrInvalidPrice
	}

	p := &domain.Product{
		SellerUserID:   caller.UserID,
		SellerUsername: caller.DisplayName(),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          *req.Price,
		Condition:      cond,
		Brand:          req.Brand,
		Stock:          req.Stock,
		Active:         true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create product: %w", err)
	}
	span.SetAttributes(attribute.Int64("product.id", p.ID))
	return p, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, viewer *Caller, q *dto.ProductListQuery) ([]*domain.Product, error) {
	filter := repository.ProductFilter{
		Skip:       q.Skip,
		Limit:      clampLimit(q.Limit, DefaultProductLimit, MaxProductLimit),
		SellerID:   q.SellerID,
		ActiveOnly: true,
	}
	if viewer != nil {
		switch viewer.Role {
		case auth.RoleAdmin:
			filter.ActiveOnly = false
		case auth.RoleSeller:
			id := viewer.UserID
			filter.OwnerID = &id
		}
	}
	return s.repo.List(ctx, filter)
}

func (s *productService) Update(ctx context.Context, caller Caller, id int64, req *dto.UpdateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.update")
	defer span.End()

	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Condition != nil {
		cond, err := domain.ParseCondition(*req.Condition)
		if err != nil {
			return nil, err
		}
		p.Condition = cond
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, caller Caller, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "service.product.delete")
	defer span.End()

	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// owned loads a product the caller may modify
func (s *productService) owned(ctx context.Context, caller Caller, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !p.IsOwnedBy(caller.UserID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
