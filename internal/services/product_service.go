// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/models"
	"github.com/auctionsys/storefront-backend/internal/utils"
)

type ProductService struct {
	db    *gorm.DB
	cache *CacheService
}

type CreateProductRequest struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	Description   string     `json:"description,omitempty"`
	Price         float64    `json:"price" validate:"min=0"`
	StockQuantity int        `json:"stock_quantity" validate:"min=0"`
	ImageURL      string     `json:"image_url,omitempty" validate:"omitempty,max=255"`
}

type UpdateProductRequest struct {
	// Omitted leaves the category unchanged; the zero UUID clears it.
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Name          string     `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string    `json:"description,omitempty"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,min=0"`
	StockQuantity *int       `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,max=255"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	PriceMin   *float64   `json:"price_min,omitempty"`
	PriceMax   *float64   `json:"price_max,omitempty"`
	InStock    *bool      `json:"in_stock,omitempty"`
}

func NewProductService(db *gorm.DB, cache *CacheService) *ProductService {
	return &ProductService{db: db, cache: cache}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Verify category exists when supplied
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("category not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	product := &models.Product{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCatalogCache()

	// Load relationships
	s.db.Preload("Category").First(product, product.ID)

	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.CategoryID != nil && *req.CategoryID != uuid.Nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("category not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	// Prepare updates
	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		if *req.CategoryID == uuid.Nil {
			// The zero UUID detaches the product from its category
			updates["category_id"] = nil
		} else {
			updates["category_id"] = *req.CategoryID
		}
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	// Apply updates
	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	s.invalidateCatalogCache()

	// Reload with relationships
	s.db.Preload("Category").First(&product, id)

	return &product, nil
}

func (s *ProductService) SetProductImage(id uuid.UUID, imageURL string) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&product).Update("image_url", imageURL).Error; err != nil {
		return nil, fmt.Errorf("failed to update product image: %w", err)
	}

	s.invalidateCatalogCache()
	return &product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Soft delete; cart rows pointing at the product go with it
	if err := s.db.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to remove cart references: %w", err)
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidateCatalogCache()
	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category")

	// Apply filters
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where("stock_quantity > 0")
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sales_count"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)

	// Apply pagination
	query = utils.ApplyPagination(query, params.PaginationParams)

	// Execute query
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetPopularProducts(ctx context.Context, limit int) ([]models.Product, error) {
	cacheKey := fmt.Sprintf("%s:%d", CacheKeyPopularProducts, limit)

	var products []models.Product
	if s.cache.Get(ctx, cacheKey, &products) {
		return products, nil
	}

	if err := s.db.Where("stock_quantity > 0").
		Order("sales_count DESC, created_at DESC").
		Limit(limit).
		Preload("Category").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular products: %w", err)
	}

	s.cache.Set(ctx, cacheKey, products)

	return products, nil
}

func (s *ProductService) invalidateCatalogCache() {
	s.cache.InvalidatePrefix(context.Background(), CacheKeyPopularProducts)
}
