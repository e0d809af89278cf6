// internal/services/product_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/config"
	"github.com/auctionsys/storefront-backend/internal/models"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	productService *ProductService
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cache := NewCacheService(config.RedisConfig{Enabled: false})
	suite.productService = NewProductService(suite.db, cache)
}

func (suite *ProductServiceTestSuite) searchParams() ProductSearchParams {
	params := ProductSearchParams{}
	params.Page = 1
	params.Limit = 20
	params.Sort = "created_at"
	params.Order = "desc"
	return params
}

func (suite *ProductServiceTestSuite) TestCreateProductWithCategory() {
	category := createTestCategory(suite.T(), suite.db, "Electronics")

	product, err := suite.productService.CreateProduct(&CreateProductRequest{
		CategoryID:    &category.ID,
		Name:          "Widget",
		Price:         19.99,
		StockQuantity: 5,
	})
	suite.Require().NoError(err)
	suite.Equal("Widget", product.Name)
	suite.Require().NotNil(product.Category)
	suite.Equal("Electronics", product.Category.Name)
}

func (suite *ProductServiceTestSuite) TestCreateProductUnknownCategory() {
	category := createTestCategory(suite.T(), suite.db, "Electronics")
	suite.db.Unscoped().Delete(category)

	_, err := suite.productService.CreateProduct(&CreateProductRequest{
		CategoryID: &category.ID,
		Name:       "Widget",
		Price:      1.00,
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "category not found")
}

func (suite *ProductServiceTestSuite) TestUpdateProductPartial() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	newPrice := 12.50
	updated, err := suite.productService.UpdateProduct(product.ID, &UpdateProductRequest{
		Price: &newPrice,
	})
	suite.Require().NoError(err)
	suite.InDelta(12.50, updated.Price, 0.001)

	// Untouched fields survive
	suite.Equal("Widget", updated.Name)
	suite.Equal(5, updated.StockQuantity)
}

func (suite *ProductServiceTestSuite) TestUpdateProductClearsCategory() {
	category := createTestCategory(suite.T(), suite.db, "Electronics")

	product, err := suite.productService.CreateProduct(&CreateProductRequest{
		CategoryID:    &category.ID,
		Name:          "Widget",
		Price:         10.00,
		StockQuantity: 5,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(product.CategoryID)

	detach := uuid.Nil
	updated, err := suite.productService.UpdateProduct(product.ID, &UpdateProductRequest{
		CategoryID: &detach,
	})
	suite.Require().NoError(err)
	suite.Nil(updated.CategoryID)

	// Detaching is reversible
	updated, err = suite.productService.UpdateProduct(product.ID, &UpdateProductRequest{
		CategoryID: &category.ID,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.CategoryID)
	suite.Equal(category.ID, *updated.CategoryID)
}

func (suite *ProductServiceTestSuite) TestSearchByCategory() {
	electronics := createTestCategory(suite.T(), suite.db, "Electronics")
	books := createTestCategory(suite.T(), suite.db, "Books")

	for _, fixture := range []struct {
		name     string
		category *models.Category
	}{
		{"Laptop", electronics},
		{"Phone", electronics},
		{"Novel", books},
	} {
		_, err := suite.productService.CreateProduct(&CreateProductRequest{
			CategoryID:    &fixture.category.ID,
			Name:          fixture.name,
			Price:         10.00,
			StockQuantity: 1,
		})
		suite.Require().NoError(err)
	}

	params := suite.searchParams()
	params.CategoryID = &electronics.ID

	products, total, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(products, 2)
}

func (suite *ProductServiceTestSuite) TestSearchByNameAndPriceRange() {
	createTestProduct(suite.T(), suite.db, "Blue Widget", 5.00, 3)
	createTestProduct(suite.T(), suite.db, "Red Widget", 15.00, 3)
	createTestProduct(suite.T(), suite.db, "Gadget", 25.00, 3)

	params := suite.searchParams()
	params.Search = "widget"

	_, total, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)

	priceMin := 10.0
	priceMax := 30.0
	params = suite.searchParams()
	params.PriceMin = &priceMin
	params.PriceMax = &priceMax

	products, total, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	for _, p := range products {
		suite.GreaterOrEqual(p.Price, priceMin)
		suite.LessOrEqual(p.Price, priceMax)
	}
}

func (suite *ProductServiceTestSuite) TestSearchInStockOnly() {
	createTestProduct(suite.T(), suite.db, "Available", 5.00, 3)
	createTestProduct(suite.T(), suite.db, "Gone", 5.00, 0)

	inStock := true
	params := suite.searchParams()
	params.InStock = &inStock

	products, total, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("Available", products[0].Name)
}

func (suite *ProductServiceTestSuite) TestSearchPagination() {
	for i := 0; i < 5; i++ {
		createTestProduct(suite.T(), suite.db, "Widget", 5.00, 1)
	}

	params := suite.searchParams()
	params.Limit = 2
	params.Page = 2

	products, total, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
	suite.Equal(int64(5), total)
	suite.Len(products, 2)
}

func (suite *ProductServiceTestSuite) TestSearchRejectsUnknownSortField() {
	createTestProduct(suite.T(), suite.db, "Widget", 5.00, 1)

	params := suite.searchParams()
	params.Sort = "password_hash; DROP TABLE products"

	// Falls back to created_at instead of passing the field through
	_, _, err := suite.productService.SearchProducts(params)
	suite.Require().NoError(err)
}

func (suite *ProductServiceTestSuite) TestPopularProductsOrderedBySales() {
	slow := createTestProduct(suite.T(), suite.db, "Slow", 5.00, 10)
	hot := createTestProduct(suite.T(), suite.db, "Hot", 5.00, 10)
	suite.db.Model(&models.Product{}).Where("id = ?", hot.ID).Update("sales_count", 40)
	suite.db.Model(&models.Product{}).Where("id = ?", slow.ID).Update("sales_count", 2)

	products, err := suite.productService.GetPopularProducts(context.Background(), 5)
	suite.Require().NoError(err)
	suite.Require().Len(products, 2)
	suite.Equal("Hot", products[0].Name)
}

func (suite *ProductServiceTestSuite) TestPopularProductsRespectsLimit() {
	for i := 0; i < 3; i++ {
		createTestProduct(suite.T(), suite.db, "Widget", 5.00, 10)
	}

	products, err := suite.productService.GetPopularProducts(context.Background(), 2)
	suite.Require().NoError(err)
	suite.Len(products, 2)

	products, err = suite.productService.GetPopularProducts(context.Background(), 10)
	suite.Require().NoError(err)
	suite.Len(products, 3)
}

func (suite *ProductServiceTestSuite) TestDeleteProductRemovesCartReferences() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 5.00, 5)
	user := createTestUser(suite.T(), suite.db, "shopper@example.com")

	cartService := NewCartService(suite.db)
	_, err := cartService.AddItem(user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.productService.DeleteProduct(product.ID))

	cart, err := cartService.GetCart(user.ID)
	suite.Require().NoError(err)
	suite.Empty(cart.Items)

	_, err = suite.productService.GetProduct(product.ID)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "not found")
}

func (suite *ProductServiceTestSuite) TestSetProductImage() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 5.00, 5)

	updated, err := suite.productService.SetProductImage(product.ID, "https://cdn.example.com/widget.png")
	suite.Require().NoError(err)
	suite.Equal("https://cdn.example.com/widget.png", updated.ImageURL)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
