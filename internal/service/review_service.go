package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

// Create adds a review behind the purchase-and-receipt gate. The duplicate
// pre-check gives a clean error for the common case; the storage-layer
// unique constraint settles concurrent submissions.
func (s *reviewService) Create(ctx context.Context, userID, productID uuid.UUID, req *model.CreateReviewRequest) (review *model.Review, err error) {
	if req == nil {
		return nil, model.NewInvalidInputError("Review request is required")
	}
	if err := model.ValidateReviewInput(req.Rating, req.Content); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	delivered, err := s.orderRepo.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		s.logger.Debug().
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("review rejected: no delivered order with product")
		return nil, model.ErrReviewNotAllowed
	}

	existing, err := s.reviewRepo.GetByProductAndUser(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrDuplicateReview
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
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

	now := time.Now()
	review = &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Content:   req.Content,
		Anonymous: req.Anonymous,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.reviewRepo.Create(ctx, tx, review); err != nil {
		return nil, err
	}

	if err = s.reviewRepo.RecomputeProductRating(ctx, tx, productID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("product_id", productID.String()).
		Int("rating", review.Rating).
		Msg("review created")

	return review, nil
}

// Update edits the author's own review and recomputes the aggregate.
func (s *reviewService) Update(ctx context.Context, reviewID, userID uuid.UUID, req *model.UpdateReviewRequest) (review *model.Review, err error) {
	if req == nil {
		return nil, model.NewInvalidInputError("Review request is required")
	}

	review, err = s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, model.ErrReviewNotFound
	}
	if review.UserID != userID {
		return nil, model.ErrForbidden
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Content != nil {
		review.Content = *req.Content
	}
	if req.Anonymous != nil {
		review.Anonymous = *req.Anonymous
	}
	if err := model.ValidateReviewInput(review.Rating, review.Content); err != nil {
		return nil, err
	}
	review.UpdatedAt = time.Now()

	tx, err := s.reviewRepo.BeginTx(ctx)
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

	if err = s.reviewRepo.Update(ctx, tx, review); err != nil {
		return nil, err
	}

	if err = s.reviewRepo.RecomputeProductRating(ctx, tx, review.ProductID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.logger.Info().Str("review_id", reviewID.String()).Msg("review updated")
	return review, nil
}

// Delete removes a review. Authors may delete their own; admins any.
func (s *reviewService) Delete(ctx context.Context, reviewID, userID uuid.UUID, role model.Role) (err error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return model.ErrReviewNotFound
	}
	if review.UserID != userID && role != model.RoleAdmin {
		return model.ErrForbidden
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.reviewRepo.Delete(ctx, tx, reviewID); err != nil {
		return err
	}

	if err = s.reviewRepo.RecomputeProductRating(ctx, tx, review.ProductID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.logger.Info().Str("review_id", reviewID.String()).Msg("review deleted")
	return nil
}

// List retrieves a product's reviews for display. Anonymous reviews carry
// the placeholder author name and no author reference.
func (s *reviewService) List(ctx context.Context, productID uuid.UUID, sort model.ReviewSort) ([]model.ReviewView, error) {
	if sort.By != "" && sort.By != "createdAt" && sort.By != "rating" {
		return nil, model.NewInvalidInputError("Reviews can only be sorted by createdAt or rating")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	reviews, err := s.reviewRepo.ListByProduct(ctx, productID, sort)
	if err != nil {
		return nil, err
	}

	// Author names are only needed for non-anonymous reviews.
	var authorIDs []uuid.UUID
	for _, r := range reviews {
		if !r.Anonymous {
			authorIDs = append(authorIDs, r.UserID)
		}
	}
	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]model.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		name := ""
		if author, ok := authors[r.UserID]; ok {
			name = author.Name
		}
		views = append(views, model.RenderReview(r, name))
	}

	return views, nil
}
