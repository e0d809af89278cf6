// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/config"
	"github.com/auctionsys/storefront-backend/internal/messaging"
	"github.com/auctionsys/storefront-backend/internal/models"
	"github.com/auctionsys/storefront-backend/internal/utils"
)

type OrderService struct {
	db        *gorm.DB
	cfg       *config.Config
	payments  *PaymentService
	publisher messaging.Publisher
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderRequest struct {
	PaymentMethod   string             `json:"payment_method" validate:"required,min=1,max=50"`
	UseCart         bool               `json:"use_cart"`
	Items           []OrderItemRequest `json:"items" validate:"omitempty,dive"`
	ShippingAddress models.JSONB       `json:"shipping_address"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	UserID string
	Status string
}

// orderEvent is the payload published to the order topic.
type orderEvent struct {
	Event      string    `json:"event"`
	OrderID    uuid.UUID `json:"order_id"`
	Reference  string    `json:"reference"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, payments *PaymentService, publisher messaging.Publisher) *OrderService {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &OrderService{db: db, cfg: cfg, payments: payments, publisher: publisher}
}

// PlaceOrder creates an order from the user's cart or from an explicit item
// list. Stock validation, decrement, order row and item rows are one
// transaction: either every line ships or nothing is written.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.UseCart && len(req.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, err := s.resolveOrderLines(tx, userID, req)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errors.New("cart is empty")
		}

		reference, err := utils.GenerateOrderReference()
		if err != nil {
			return fmt.Errorf("failed to generate order reference: %w", err)
		}

		order = models.Order{
			UserID:          userID,
			Reference:       reference,
			Status:          models.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
		}

		var total float64
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			// Guarded decrement: the stock check and the write are a single
			// statement, so two concurrent orders cannot both take the last unit.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.product.ID, line.quantity).
				UpdateColumns(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity - ?", line.quantity),
					"sales_count":    gorm.Expr("sales_count + ?", line.quantity),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("not enough stock for %s", line.product.Name)
			}

			items = append(items, models.OrderItem{
				ProductID: line.product.ID,
				Quantity:  line.quantity,
				Price:     line.product.Price,
			})
			total += line.product.Price * float64(line.quantity)
		}

		order.TotalPrice = total
		order.OrderItems = items

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if req.UseCart {
			if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Card payments get a PaymentIntent after the order is committed; a
	// payment failure leaves a pending order rather than rolling back stock.
	var clientSecret string
	if req.PaymentMethod == "card" && s.payments != nil && s.payments.Enabled() {
		piID, secret, err := s.payments.CreatePaymentIntent(order.ID.String(), order.Reference, order.TotalPrice)
		if err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to create payment intent")
		} else {
			clientSecret = secret
			if err := s.db.Model(&order).Update("payment_reference", piID).Error; err != nil {
				logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to store payment reference")
			}
		}
	}

	s.publish(ctx, "order.placed", &order)

	s.db.Preload("OrderItems").Preload("OrderItems.Product").First(&order, order.ID)
	order.PaymentClientSecret = clientSecret

	return &order, nil
}

type orderLine struct {
	product  models.Product
	quantity int
}

// resolveOrderLines loads products and quantities either from the user's
// cart rows or from the explicit request items, within the transaction.
func (s *OrderService) resolveOrderLines(tx *gorm.DB, userID uuid.UUID, req *PlaceOrderRequest) ([]orderLine, error) {
	if req.UseCart {
		var cartItems []models.CartItem
		if err := tx.Preload("Product").Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}

		lines := make([]orderLine, 0, len(cartItems))
		for _, ci := range cartItems {
			// A product soft-deleted while carted preloads as a zero value
			if ci.Product.ID == uuid.Nil {
				return nil, errors.New("product not found")
			}
			lines = append(lines, orderLine{product: ci.Product, quantity: ci.Quantity})
		}
		return lines, nil
	}

	// Merge duplicate product lines so the guarded decrement runs once per product
	merged := make(map[uuid.UUID]int)
	ordered := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		if _, seen := merged[it.ProductID]; !seen {
			ordered = append(ordered, it.ProductID)
		}
		merged[it.ProductID] += it.Quantity
	}

	lines := make([]orderLine, 0, len(ordered))
	for _, productID := range ordered {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("product not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		lines = append(lines, orderLine{product: product, quantity: merged[productID]})
	}
	return lines, nil
}

func (s *OrderService) ListOrders(userID uuid.UUID, isAdmin bool, params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("OrderItems").Preload("OrderItems.Product")

	if isAdmin {
		if params.UserID != "" {
			filterID, err := uuid.Parse(params.UserID)
			if err != nil {
				return nil, 0, errors.New("invalid user id")
			}
			query = query.Where("user_id = ?", filterID)
		}
	} else {
		query = query.Where("user_id = ?", userID)
	}

	if params.Status != "" {
		if !models.OrderStatus(params.Status).Valid() {
			return nil, 0, errors.New("invalid order status")
		}
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total_price", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetOrder(orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderItems").Preload("OrderItems.Product").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && order.UserID != userID {
		return nil, errors.New("unauthorized to view this order")
	}

	return &order, nil
}

// UpdateStatus is the admin transition. Moving an order to canceled goes
// through the restore path so stock comes back exactly once.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.Status.Valid() {
		return nil, errors.New("invalid order status")
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Status == models.OrderStatusCanceled {
		if order.Status == models.OrderStatusCanceled {
			return nil, errors.New("order is already canceled")
		}
		if err := s.cancelTx(&order); err != nil {
			return nil, err
		}
		s.publish(ctx, "order.canceled", &order)
	} else {
		if err := s.db.Model(&order).Update("status", req.Status).Error; err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = req.Status
		s.publish(ctx, "order.status_changed", &order)
	}

	s.db.Preload("OrderItems").Preload("OrderItems.Product").First(&order, order.ID)

	return &order, nil
}

// CancelOrder is the customer-initiated cancellation. Only orders in a
// configured cancelable status qualify; rejecting everything else also
// rejects a second cancel, so stock is never restored twice.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != userID {
		return nil, errors.New("unauthorized to cancel this order")
	}

	if !s.isCancelable(order.Status) {
		return nil, errors.New("order can no longer be canceled")
	}

	if err := s.cancelTx(&order); err != nil {
		return nil, err
	}

	s.publish(ctx, "order.canceled", &order)

	s.db.Preload("OrderItems").Preload("OrderItems.Product").First(&order, order.ID)

	return &order, nil
}

// cancelTx restores stock for every item and marks the order canceled in a
// single transaction. The status guard on the UPDATE makes concurrent
// cancellations race-safe: only one transition wins, so the restore runs once.
func (s *OrderService) cancelTx(order *models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", order.ID, models.OrderStatusCanceled).
			Update("status", models.OrderStatusCanceled)
		if result.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("order is already canceled")
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}

		for _, item := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumns(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity + ?", item.Quantity),
					"sales_count":    gorm.Expr("sales_count - ?", item.Quantity),
				}).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		order.Status = models.OrderStatusCanceled
		return nil
	})
}

func (s *OrderService) isCancelable(status models.OrderStatus) bool {
	for _, allowed := range s.cfg.Order.CancelableStatuses {
		if string(status) == allowed {
			return true
		}
	}
	return false
}

func (s *OrderService) publish(ctx context.Context, event string, order *models.Order) {
	payload := orderEvent{
		Event:      event,
		OrderID:    order.ID,
		Reference:  order.Reference,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishEvent(ctx, s.cfg.Kafka.Topic, order.Reference, payload); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order event")
	}
}
