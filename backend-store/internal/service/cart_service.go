package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
)

// CartService manages the caller's active cart
type CartService interface {
	// Get returns the active cart, creating an empty one when there is none
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID int64, req *dto.AddCartItemRequest) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID int64, req *dto.UpdateCartItemRequest) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService creates a new CartService
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetActive(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}

	cart = &domain.Cart{UserID: userID}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID int64, req *dto.AddCartItemRequest) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.add_item")
	defer span.End()

	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.activeProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	already := 0
	if existing := cart.FindItem(product.ID); existing != nil {
		already = existing.Quantity
	}
	if already+req.Quantity > product.Stock {
		return nil, domain.ErrInsufficientStock
	}

	item := &domain.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.carts.GetActive(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID int64, req *dto.UpdateCartItemRequest) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.update_item")
	defer span.End()

	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	product, err := s.activeProduct(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.Stock {
		return nil, domain.ErrInsufficientStock
	}

	if err := s.carts.UpdateItemQuantity(ctx, itemID, req.Quantity); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.carts.GetActive(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.carts.DeleteItem(ctx, itemID)
}

// ownedItem loads a line of the caller's active cart. Lines of other carts
// are reported as missing.
func (s *cartService) ownedItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, domain.ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) activeProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}
