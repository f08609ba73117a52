package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductService interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	RefreshProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductView(ctx context.Context, id string) (*models.ProductView, error)
	ListProducts(ctx context.Context, category string, page, size int) (*models.ProductListResponse, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewProductService(repo repository.ProductRepository, cache cache.Cache) ProductService {
	return &productService{repo: repo, cache: cache}
}

// GetProduct reads through the product cache. Cache failures are logged and
// the catalog is used directly.
func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.ProductKeyPrefix, id)

	if s.cache != nil {
		var cached models.Product

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
		} else if found {
			return &cached, nil
		}
	}

	return s.RefreshProduct(ctx, id)
}

// RefreshProduct skips the cache and reads the catalog, then stores the fresh
// copy. Cart writes use it so stock checks never see a cached count.
func (s *productService) RefreshProduct(ctx context.Context, id string) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.ProductKeyPrefix, id)

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, product, 0); err != nil {
			logger.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	return product, nil
}

func (s *productService) GetProductView(ctx context.Context, id string) (*models.ProductView, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	view := pricing.View(product)

	return &view, nil
}

// page means "page number requested", size the number of products per page.
func (s *productService) ListProducts(ctx context.Context, category string, page, size int) (*models.ProductListResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = defaultPageSize
	}

	if size > maxPageSize {
		size = maxPageSize
	}

	products, total, err := s.repo.ListProducts(ctx, category, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, pricing.View(p))
	}

	return &models.ProductListResponse{
		Products: views,
		Total:    total,
		Page:     page,
		Size:     size,
	}, nil
}
