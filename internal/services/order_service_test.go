// internal/services/order_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	orderService *OrderService
	cartService  *CartService
	user         *models.User
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := newTestConfig()
	suite.orderService = NewOrderService(suite.db, cfg, NewPaymentService(cfg), nil)
	suite.cartService = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "buyer@example.com")
}

func (suite *OrderServiceTestSuite) addToCart(product *models.Product, qty int) {
	_, err := suite.cartService.AddItem(suite.user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  qty,
	})
	suite.Require().NoError(err)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderFromCart() {
	productA := createTestProduct(suite.T(), suite.db, "Widget", 19.99, 10)
	productB := createTestProduct(suite.T(), suite.db, "Gadget", 5.50, 4)

	suite.addToCart(productA, 2)
	suite.addToCart(productB, 3)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		UseCart:       true,
	})
	suite.Require().NoError(err)

	// Total equals the sum of snapshot price * quantity
	suite.InDelta(2*19.99+3*5.50, order.TotalPrice, 0.001)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Len(order.OrderItems, 2)
	suite.NotEmpty(order.Reference)

	// Stock was decremented
	var a, b models.Product
	suite.db.First(&a, productA.ID)
	suite.db.First(&b, productB.ID)
	suite.Equal(8, a.StockQuantity)
	suite.Equal(1, b.StockQuantity)
	suite.Equal(int64(2), a.SalesCount)

	// Cart was cleared
	cart, err := suite.cartService.GetCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(cart.Items)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderInsufficientStockRollsBack() {
	productA := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)
	productB := createTestProduct(suite.T(), suite.db, "Gadget", 4.00, 1)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items: []OrderItemRequest{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 3},
		},
	})
	suite.Require().Error(err)
	suite.Nil(order)
	suite.Contains(err.Error(), "stock")

	// Nothing was written: product A keeps its stock even though its line
	// was processed before the failing one
	var a, b models.Product
	suite.db.First(&a, productA.ID)
	suite.db.First(&b, productB.ID)
	suite.Equal(5, a.StockQuantity)
	suite.Equal(1, b.StockQuantity)

	var orderCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.Equal(int64(0), orderCount)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderEmptyCartRejected() {
	_, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		UseCart:       true,
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "cart is empty")
}

func (suite *OrderServiceTestSuite) TestPlaceOrderNoItemsRejected() {
	_, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "at least one item")
}

func (suite *OrderServiceTestSuite) TestPlaceOrderAcceptsAnyPaymentMethod() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	// payment_method is an opaque label, not an enum
	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "paypal",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)
	suite.Equal("paypal", order.PaymentMethod)

	_, err = suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: strings.Repeat("x", 51),
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "validation")
}

func (suite *OrderServiceTestSuite) TestPlaceOrderExplicitItemsMergesDuplicates() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 2.00, 10)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items: []OrderItemRequest{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	suite.Require().NoError(err)

	suite.Len(order.OrderItems, 1)
	suite.Equal(5, order.OrderItems[0].Quantity)
	suite.InDelta(10.00, order.TotalPrice, 0.001)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderLastUnit() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 7.00, 1)

	_, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	// The second attempt loses deterministically
	other := createTestUser(suite.T(), suite.db, "other@example.com")
	_, err = suite.orderService.PlaceOrder(context.Background(), other.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "stock")

	var p models.Product
	suite.db.First(&p, product.ID)
	suite.Equal(0, p.StockQuantity)
}

func (suite *OrderServiceTestSuite) TestOrderPriceSnapshotSurvivesPriceChange() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	suite.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", 99.99)

	reloaded, err := suite.orderService.GetOrder(order.ID, suite.user.ID, false)
	suite.Require().NoError(err)
	suite.InDelta(10.00, reloaded.OrderItems[0].Price, 0.001)
	suite.InDelta(10.00, reloaded.TotalPrice, 0.001)
}

func (suite *OrderServiceTestSuite) TestCancelOrderRestoresStock() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	})
	suite.Require().NoError(err)

	var p models.Product
	suite.db.First(&p, product.ID)
	suite.Equal(2, p.StockQuantity)

	canceled, err := suite.orderService.CancelOrder(context.Background(), order.ID, suite.user.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusCanceled, canceled.Status)

	suite.db.First(&p, product.ID)
	suite.Equal(5, p.StockQuantity)
	suite.Equal(int64(0), p.SalesCount)
}

func (suite *OrderServiceTestSuite) TestDoubleCancelRejected() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	})
	suite.Require().NoError(err)

	_, err = suite.orderService.CancelOrder(context.Background(), order.ID, suite.user.ID)
	suite.Require().NoError(err)

	// A second cancel must not restore stock again
	_, err = suite.orderService.CancelOrder(context.Background(), order.ID, suite.user.ID)
	suite.Require().Error(err)

	var p models.Product
	suite.db.First(&p, product.ID)
	suite.Equal(5, p.StockQuantity)
}

func (suite *OrderServiceTestSuite) TestCancelOthersOrderForbidden() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	other := createTestUser(suite.T(), suite.db, "other@example.com")
	_, err = suite.orderService.CancelOrder(context.Background(), order.ID, other.ID)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "unauthorized")
}

func (suite *OrderServiceTestSuite) TestCancelShippedOrderRejected() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	suite.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderStatusShipped)

	_, err = suite.orderService.CancelOrder(context.Background(), order.ID, suite.user.ID)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "no longer")
}

func (suite *OrderServiceTestSuite) TestAdminStatusUpdateToCanceledRestoresStock() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 4}},
	})
	suite.Require().NoError(err)

	updated, err := suite.orderService.UpdateStatus(context.Background(), order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusCanceled,
	})
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusCanceled, updated.Status)

	var p models.Product
	suite.db.First(&p, product.ID)
	suite.Equal(5, p.StockQuantity)
}

func (suite *OrderServiceTestSuite) TestAdminStatusUpdateInvalidStatus() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	_, err = suite.orderService.UpdateStatus(context.Background(), order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatus("teleported"),
	})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "invalid order status")
}

func (suite *OrderServiceTestSuite) TestListOrdersScopedToOwner() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 20)
	other := createTestUser(suite.T(), suite.db, "other@example.com")

	_, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	_, err = suite.orderService.PlaceOrder(context.Background(), other.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	params := OrderSearchParams{}
	params.Page = 1
	params.Limit = 20
	params.Sort = "created_at"
	params.Order = "desc"

	orders, total, err := suite.orderService.ListOrders(suite.user.ID, false, params)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(orders, 1)
	suite.Equal(suite.user.ID, orders[0].UserID)

	// Admin sees everything
	orders, total, err = suite.orderService.ListOrders(other.ID, true, params)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(orders, 2)
}

func (suite *OrderServiceTestSuite) TestGetOrderOwnership() {
	product := createTestProduct(suite.T(), suite.db, "Widget", 10.00, 5)
	other := createTestUser(suite.T(), suite.db, "other@example.com")

	order, err := suite.orderService.PlaceOrder(context.Background(), suite.user.ID, &PlaceOrderRequest{
		PaymentMethod: "cod",
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	suite.Require().NoError(err)

	_, err = suite.orderService.GetOrder(order.ID, other.ID, false)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "unauthorized")

	// Admin may read any order
	got, err := suite.orderService.GetOrder(order.ID, other.ID, true)
	suite.Require().NoError(err)
	suite.Equal(order.ID, got.ID)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
