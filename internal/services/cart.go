package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/money"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

type cartService struct {
	repo     repository.CartRepository
	products ProductService
	lock     *locker
}

func NewCartService(repo repository.CartRepository, products ProductService, locks repository.LockRepository, lockTTL time.Duration) CartService {
	return &cartService{
		repo:     repo,
		products: products,
		lock:     &locker{locks: locks, ttl: lockTTL, retry: shortRetry},
	}
}

func cartLockName(sessionID string) string {
	return "cart:" + sessionID
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	return cart, nil
}

// mutate loads the cart under the session lock, applies fn and persists the
// result before returning it.
func (s *cartService) mutate(ctx context.Context, sessionID string, fn func(cart *models.Cart) error) (*models.Cart, error) {
	var result *models.Cart

	err := s.lock.withLock(ctx, cartLockName(sessionID), func() error {
		cart, err := s.GetCart(ctx, sessionID)
		if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return err
		}

		cart.SessionID = sessionID
		cart.UpdatedAt = time.Now().UTC()

		if err := s.repo.SaveCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to save cart").WithError(err)
		}

		result = cart

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx)

	if req.Quantity <= 0 {
		return nil, appErrors.InvalidQuantityError("Quantity must be greater than zero")
	}

	product, err := s.products.RefreshProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	selection := pricing.Canonical(product, models.VariantSelection{Size: req.Size, Color: req.Color})

	price, ok := pricing.Resolve(product, selection)
	if !ok {
		logger.Error("Product has no resolvable price", slog.String("productID", product.ID))
		return nil, appErrors.InternalError("Product has no price")
	}

	variantKey := pricing.VariantKey(selection)

	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		existing, _ := cart.Find(product.ID, variantKey)

		if existing.Quantity+req.Quantity > product.Stock {
			return appErrors.InsufficientStockError(fmt.Sprintf("Only %d left in stock", product.Stock))
		}

		item := cart.Merge(models.CartLineItem{
			ProductID:   product.ID,
			VariantKey:  variantKey,
			DisplayName: pricing.DisplayName(product, selection),
			UnitPrice:   price,
			Quantity:    req.Quantity,
		})

		logger.Info("Item added to cart",
			slog.String("productID", item.ProductID),
			slog.String("variant", item.VariantKey),
			slog.Int("quantity", item.Quantity))

		return nil
	})
}

// UpdateQuantity clamps the quantity to [1, stock]. The stored unit price is
// kept.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	product, err := s.products.RefreshProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if product.Stock < 1 {
		return nil, appErrors.InsufficientStockError("Product is out of stock")
	}

	quantity := min(max(req.Quantity, 1), product.Stock)

	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		if _, ok := cart.SetQuantity(req.ProductID, req.VariantKey, quantity); !ok {
			return appErrors.NotFoundError("Item not in cart")
		}

		return nil
	})
}

// RemoveItem is a no-op for a line that is not in the cart.
func (s *cartService) RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		cart.Remove(req.ProductID, req.VariantKey)
		return nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.lock.withLock(ctx, cartLockName(sessionID), func() error {
		if err := s.repo.DeleteCart(ctx, sessionID); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		return nil
	})
}

// Subtotal is rounded to currency precision for display and charging.
func (s *cartService) Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}

	return money.Round(cart.Subtotal()), nil
}
