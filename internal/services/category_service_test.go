// internal/services/category_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/config"
	"github.com/auctionsys/storefront-backend/internal/models"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	db              *gorm.DB
	categoryService *CategoryService
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cache := NewCacheService(config.RedisConfig{Enabled: false})
	suite.categoryService = NewCategoryService(suite.db, cache)
}

func (suite *CategoryServiceTestSuite) TestCreateAndListSorted() {
	_, err := suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Toys"})
	suite.Require().NoError(err)
	_, err = suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Books"})
	suite.Require().NoError(err)

	categories, err := suite.categoryService.ListCategories(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(categories, 2)
	suite.Equal("Books", categories[0].Name)
	suite.Equal("Toys", categories[1].Name)
}

func (suite *CategoryServiceTestSuite) TestCreateDuplicateName() {
	_, err := suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Toys"})
	suite.Require().NoError(err)

	_, err = suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Toys"})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "already exists")
}

func (suite *CategoryServiceTestSuite) TestUpdateCategory() {
	category, err := suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Toys"})
	suite.Require().NoError(err)

	updated, err := suite.categoryService.UpdateCategory(context.Background(), category.ID, &UpdateCategoryRequest{
		Name:        "Games",
		Description: "Board and video games",
	})
	suite.Require().NoError(err)
	suite.Equal("Games", updated.Name)
	suite.Equal("Board and video games", updated.Description)
}

func (suite *CategoryServiceTestSuite) TestDeleteCategoryDetachesProducts() {
	category, err := suite.categoryService.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Toys"})
	suite.Require().NoError(err)

	product := &models.Product{
		CategoryID:    &category.ID,
		Name:          "Widget",
		Price:         5.00,
		StockQuantity: 1,
	}
	suite.Require().NoError(suite.db.Create(product).Error)

	suite.Require().NoError(suite.categoryService.DeleteCategory(context.Background(), category.ID))

	// Product survives without a category
	var p models.Product
	suite.Require().NoError(suite.db.First(&p, product.ID).Error)
	suite.Nil(p.CategoryID)

	_, err = suite.categoryService.GetCategory(category.ID)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "not found")
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
