package service

import (
	"context"
	"time"

	"storefront/internal/aiclient"
	"storefront/internal/imagestore"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	images      imagestore.Store
	ai          aiclient.Client
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	productRepo repository.ProductRepository,
	images imagestore.Store,
	ai aiclient.Client,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		images:      images,
		ai:          ai,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// List retrieves products matching the filter.
func (s *catalogService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return s.productRepo.List(ctx, filter)
}

// GetByID retrieves a single product.
func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func validateCreateProductRequest(req *model.CreateProductRequest) error {
	if req == nil {
		return model.NewInvalidInputError("Product request is required")
	}
	if req.Name == "" {
		return model.NewInvalidInputError("Product name is required")
	}
	if req.Price < 0 {
		return model.NewInvalidInputError("Price cannot be negative")
	}
	if req.Stock < 0 {
		return model.NewInvalidInputError("Stock cannot be negative")
	}
	return nil
}

// Create adds a product to the catalogue. Image embedding registration is
// best-effort: a failed AI call logs and continues, it never rolls back the
// product write.
func (s *catalogService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := validateCreateProductRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageKey:    req.ImageKey,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	if product.ImageKey != "" {
		s.registerImage(ctx, product)
	}

	return product, nil
}

// registerImage pushes the product image embedding to the AI collaborator
// and persists the record identifier so a later replacement can drop it.
func (s *catalogService) registerImage(ctx context.Context, product *model.Product) {
	image, err := s.images.Fetch(ctx, product.ImageKey)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("product_id", product.ID.String()).
			Str("image_key", product.ImageKey).
			Msg("failed to load product image, skipping embedding registration")
		return
	}

	imageID := uuid.New().String()
	if _, err := s.ai.Upsert(ctx, imageID, product.ID.String(), image); err != nil {
		s.logger.Warn().Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to register product image embedding")
		return
	}

	if err := s.productRepo.SetImageID(ctx, product.ID, imageID); err != nil {
		s.logger.Warn().Err(err).
			Str("product_id", product.ID.String()).
			Str("image_id", imageID).
			Msg("failed to persist product image id")
		return
	}
	product.ImageID = imageID

	s.logger.Debug().
		Str("product_id", product.ID.String()).
		Str("image_id", imageID).
		Msg("product image embedding registered")
}

// deregisterImage drops the stale embedding record after an image change.
// The cleared image id is persisted even when the collaborator call fails,
// so the record is not mistaken for a live registration.
func (s *catalogService) deregisterImage(ctx context.Context, product *model.Product, imageID string) {
	if err := s.ai.Delete(ctx, imageID); err != nil {
		s.logger.Warn().Err(err).
			Str("product_id", product.ID.String()).
			Str("image_id", imageID).
			Msg("failed to delete product image embedding")
	}

	if err := s.productRepo.SetImageID(ctx, product.ID, ""); err != nil {
		s.logger.Warn().Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to clear product image id")
		return
	}
	product.ImageID = ""
}

// Update edits a product. Nil request fields are left unchanged. A changed
// image key drops the old embedding record and registers the new image,
// both best-effort.
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewInvalidInputError("Product request is required")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	imageChanged := false
	oldImageID := product.ImageID
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, model.NewInvalidInputError("Price cannot be negative")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, model.NewInvalidInputError("Stock cannot be negative")
		}
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.ImageKey != nil && *req.ImageKey != product.ImageKey {
		product.ImageKey = *req.ImageKey
		imageChanged = true
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	if imageChanged {
		if oldImageID != "" {
			s.deregisterImage(ctx, product, oldImageID)
		}
		if product.ImageKey != "" {
			s.registerImage(ctx, product)
		}
	}

	return product, nil
}

// LowStock retrieves active products at or below the stock threshold.
func (s *catalogService) LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = 10
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.LowStock(ctx, threshold, limit)
}
