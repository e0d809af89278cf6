// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	cartService *CartService
	user        *models.User
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.cartService = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "shopper@example.com")
}

func (suite *CartServiceTestSuite) TestAddItemIncrementsExistingLine() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 10)

	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  3,
	})
	suite.Require().NoError(err)

	item, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	})
	suite.Require().NoError(err)
	suite.Equal(5, item.Quantity)

	// Still a single row for the pair
	var count int64
	suite.db.Model(&models.CartItem{}).Where("user_id = ?", suite.user.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *CartServiceTestSuite) TestAddItemChecksResultingQuantityAgainstStock() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 4)

	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  3,
	})
	suite.Require().NoError(err)

	// 3 + 2 exceeds stock of 4
	_, err = suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "stock")
}

func (suite *CartServiceTestSuite) TestAddItemInvalidQuantity() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 1.00, 1)

	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  0,
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "validation")
}

func (suite *CartServiceTestSuite) TestUpdateItemStockCheck() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	item, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	})
	suite.Require().NoError(err)

	updated, err := suite.cartService.UpdateItem(suite.user.ID, item.ID, &UpdateCartItemRequest{Quantity: 5})
	suite.Require().NoError(err)
	suite.Equal(5, updated.Quantity)

	_, err = suite.cartService.UpdateItem(suite.user.ID, item.ID, &UpdateCartItemRequest{Quantity: 6})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "stock")
}

func (suite *CartServiceTestSuite) TestUpdateOthersItemForbidden() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	item, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  1,
	})
	suite.Require().NoError(err)

	other := createTestUser(suite.T(), suite.db, "other@example.com")
	_, err = suite.cartService.UpdateItem(other.ID, item.ID, &UpdateCartItemRequest{Quantity: 2})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "unauthorized")

	err = suite.cartService.RemoveItem(other.ID, item.ID)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "unauthorized")
}

func (suite *CartServiceTestSuite) TestRemoveItem() {
	productA := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)
	productB := createTestProduct(suite.T(), suite.db, "Gadget", 4.00, 5)

	itemA, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{ProductID: productA.ID, Quantity: 1})
	suite.Require().NoError(err)
	_, err = suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{ProductID: productB.ID, Quantity: 1})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.cartService.RemoveItem(suite.user.ID, itemA.ID))

	cart, err := suite.cartService.GetCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(cart.Items, 1)
	suite.Equal(productB.ID, cart.Items[0].ProductID)
}

func (suite *CartServiceTestSuite) TestClearCartScopedToOwner() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 10)
	other := createTestUser(suite.T(), suite.db, "other@example.com")

	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	suite.Require().NoError(err)
	_, err = suite.cartService.AddItem(other.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.cartService.ClearCart(suite.user.ID))

	mine, err := suite.cartService.GetCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(mine.Items)

	theirs, err := suite.cartService.GetCart(other.ID)
	suite.Require().NoError(err)
	suite.Len(theirs.Items, 1)
}

func (suite *CartServiceTestSuite) TestCartTotal() {
	productA := createTestProduct(suite.T(), suite.db, "Widget", 19.99, 10)
	productB := createTestProduct(suite.T(), suite.db, "Gadget", 5.50, 10)

	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{ProductID: productA.ID, Quantity: 2})
	suite.Require().NoError(err)
	_, err = suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{ProductID: productB.ID, Quantity: 3})
	suite.Require().NoError(err)

	cart, err := suite.cartService.GetCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.InDelta(2*19.99+3*5.50, cart.Total, 0.001)
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
