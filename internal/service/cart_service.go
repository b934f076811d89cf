package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's cart joined with live product data.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return model.EmptyCartView(), nil
	}

	return s.view(ctx, cart.ID)
}

func (s *cartService) view(ctx context.Context, cartID uuid.UUID) (*model.CartView, error) {
	lines, err := s.cartRepo.GetLines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := model.EmptyCartView()
	for _, line := range lines {
		view.Items = append(view.Items, line)
		view.Subtotal += line.PriceSnapshot * int64(line.Quantity)
	}
	return view, nil
}

// fetchActiveProduct loads a product that exists and is sellable.
func (s *cartService) fetchActiveProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// AddItem adds quantity of a product, accumulating with any existing line.
// Stock is only checked, never reserved: reservation happens at checkout.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartView, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.fetchActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing := 0
	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			existing = item.Quantity
			break
		}
	}

	if product.Stock < existing+qty {
		s.logger.Debug().
			Str("product_id", productID.String()).
			Int("stock", product.Stock).
			Int("requested", existing+qty).
			Msg("insufficient stock for cart add")
		return nil, model.NewInsufficientStockError(product.Name, product.Stock)
	}

	item := &model.CartItem{
		ID:            uuid.New(),
		CartID:        cart.ID,
		ProductID:     productID,
		Quantity:      existing + qty,
		PriceSnapshot: product.Price,
	}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Int("quantity", item.Quantity).
		Msg("cart item added")

	return s.view(ctx, cart.ID)
}

// UpdateItem sets a line's quantity. Zero removes the line.
func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartView, error) {
	if qty < 0 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return model.EmptyCartView(), nil
	}

	if qty == 0 {
		if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
			return nil, err
		}
		return s.view(ctx, cart.ID)
	}

	product, err := s.fetchActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Stock < qty {
		return nil, model.NewInsufficientStockError(product.Name, product.Stock)
	}

	item := &model.CartItem{
		ID:            uuid.New(),
		CartID:        cart.ID,
		ProductID:     productID,
		Quantity:      qty,
		PriceSnapshot: product.Price,
	}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	return s.view(ctx, cart.ID)
}

// RemoveItem drops a line entirely regardless of quantity.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.CartView, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return model.EmptyCartView(), nil
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	return s.view(ctx, cart.ID)
}

// Clear removes all lines.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}

	return s.cartRepo.Clear(ctx, cart.ID)
}
