package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// createOrderAttempts bounds retries on order number collisions.
const createOrderAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	shippingFee int64
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	shippingFee int64,
	logger zerolog.Logger,
) OrderService {
	if shippingFee < 0 {
		shippingFee = model.DefaultShippingFee
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		shippingFee: shippingFee,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// generateOrderNumber produces a time-correlated, sortable order number.
// Collisions are possible and handled by the uniqueness constraint plus a
// retry of the whole creation attempt.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), rand.IntN(1000))
}

func validateCreateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewInvalidInputError("Order request is required")
	}
	if req.ShippingAddress == "" {
		return model.NewInvalidInputError("Shipping address is required")
	}
	switch req.PaymentMethod {
	case model.PaymentMethodCOD, model.PaymentMethodCard:
	default:
		return model.NewInvalidInputError("Payment method must be cod or card")
	}
	return nil
}

// Create materializes the user's cart into an order. Stock re-validation,
// decrement, order insert and cart clear share one transaction: any failure
// rolls everything back.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	// A failed insert aborts the surrounding transaction, so an order number
	// collision retries the whole attempt rather than just the insert.
	var order *model.Order
	for attempt := 1; ; attempt++ {
		order, err = s.createAttempt(ctx, userID, cart.ID, req, items, products)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < createOrderAttempts {
			s.logger.Warn().Int("attempt", attempt).Msg("retrying order creation after order number collision")
			continue
		}
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int64("total_amount", order.TotalAmount).
		Int("item_count", len(order.Items)).
		Msg("order created")

	return order, nil
}

func (s *orderService) createAttempt(
	ctx context.Context,
	userID, cartID uuid.UUID,
	req *model.CreateOrderRequest,
	items []model.CartItem,
	products map[uuid.UUID]model.Product,
) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var subtotal int64
	orderItems := make([]model.OrderItem, 0, len(items))

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			err = model.ErrProductNotFound
			return nil, err
		}

		var decremented bool
		decremented, err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !decremented {
			// Re-read inside the transaction so the reported count reflects
			// the stock the decrement actually saw, not the earlier read.
			var available int
			available, err = s.productRepo.StockTx(ctx, tx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to create order: %w", err)
			}
			err = model.NewInsufficientStockError(product.Name, available)
			return nil, err
		}

		subtotal += item.PriceSnapshot * int64(item.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ID:          uuid.New(),
			ProductID:   item.ProductID,
			ProductName: product.Name,
			UnitPrice:   item.PriceSnapshot,
			Quantity:    item.Quantity,
		})
	}

	now := time.Now()
	tax := model.Tax(subtotal)
	order = &model.Order{
		ID:              uuid.New(),
		OrderNumber:     generateOrderNumber(now),
		UserID:          userID,
		Items:           orderItems,
		Subtotal:        subtotal,
		ShippingFee:     s.shippingFee,
		Tax:             tax,
		TotalAmount:     subtotal + s.shippingFee + tax,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.OrderStatusPending,
		Note:            req.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.cartRepo.ClearTx(ctx, tx, cartID); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetByID retrieves an order. Only the owner or an admin may read it.
func (s *orderService) GetByID(ctx context.Context, orderID, userID uuid.UUID, role model.Role) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.UserID != userID && role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	return order, nil
}

// ListByUser retrieves the user's orders, most recent first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}

// List retrieves orders matching the filter (admin).
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != nil && !model.ValidOrderStatus(*filter.Status) {
		return nil, model.NewInvalidInputError(fmt.Sprintf("Unknown order status %q", *filter.Status))
	}
	return s.orderRepo.List(ctx, filter)
}

// UpdateStatus performs an admin status transition. Delivering a
// cash-on-delivery order completes its payment; cancelling restores stock.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (order *model.Order, err error) {
	if !model.ValidOrderStatus(next) {
		return nil, model.NewInvalidInputError(fmt.Sprintf("Unknown order status %q", next))
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !model.CanTransition(order.Status, next) {
		err = model.NewInvalidTransitionError(order.Status, next)
		return nil, err
	}

	paymentStatus := order.PaymentStatus
	var paidAt *time.Time

	switch next {
	case model.OrderStatusDelivered:
		if order.PaymentMethod == model.PaymentMethodCOD && paymentStatus != model.PaymentStatusCompleted {
			paymentStatus = model.PaymentStatusCompleted
			now := time.Now()
			paidAt = &now
		}
	case model.OrderStatusCancelled:
		if err = s.restoreStock(ctx, tx, order); err != nil {
			return nil, err
		}
		if paymentStatus == model.PaymentStatusCompleted {
			paymentStatus = model.PaymentStatusRefunded
		}
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, next, paymentStatus, paidAt); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Msg("order status updated")

	order.Status = next
	order.PaymentStatus = paymentStatus
	if paidAt != nil {
		order.PaidAt = paidAt
	}
	return order, nil
}

func (s *orderService) restoreStock(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Cancel cancels an order from pending or processing, restoring stock.
func (s *orderService) Cancel(ctx context.Context, orderID, userID uuid.UUID, role model.Role) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.UserID != userID && role != model.RoleAdmin {
		err = model.ErrForbidden
		return nil, err
	}

	if !order.Status.Cancellable() {
		err = model.NewInvalidTransitionError(order.Status, model.OrderStatusCancelled)
		return nil, err
	}

	if err = s.restoreStock(ctx, tx, order); err != nil {
		return nil, err
	}

	paymentStatus := order.PaymentStatus
	if paymentStatus == model.PaymentStatusCompleted {
		paymentStatus = model.PaymentStatusRefunded
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderStatusCancelled, paymentStatus, nil); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", userID.String()).
		Msg("order cancelled, stock restored")

	order.Status = model.OrderStatusCancelled
	order.PaymentStatus = paymentStatus
	return order, nil
}

// ConfirmPayment records a successful payment through the mocked gateway.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID, userID uuid.UUID) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.UserID != userID {
		err = model.ErrForbidden
		return nil, err
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		err = model.NewInvalidInputError("Payment has already been completed")
		return nil, err
	}
	if order.Status.IsTerminal() {
		err = model.NewInvalidInputError("Cannot pay for a completed or cancelled order")
		return nil, err
	}

	now := time.Now()
	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, model.PaymentStatusCompleted, &now); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("payment confirmed")

	order.PaymentStatus = model.PaymentStatusCompleted
	order.PaidAt = &now
	return order, nil
}
