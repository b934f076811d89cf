package service

import (
	"context"
	"fmt"
	"sort"

	"storefront/internal/aiclient"
	"storefront/internal/imagestore"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Comparison bounds.
const (
	compareMinProducts = 2
	compareMaxProducts = 4
	compareReviewLimit = 50
)

// searchService implements SearchService on top of the AI collaborator.
type searchService struct {
	ai          aiclient.Client
	images      imagestore.Store
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	threshold   float64
	logger      zerolog.Logger
}

// NewSearchService creates a new search service. threshold is the minimum
// similarity an image hit must reach to be returned.
func NewSearchService(
	ai aiclient.Client,
	images imagestore.Store,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	threshold float64,
	logger zerolog.Logger,
) SearchService {
	return &searchService{
		ai:          ai,
		images:      images,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		threshold:   threshold,
		logger:      logger.With().Str("service", "search").Logger(),
	}
}

// ByImage finds products similar to a query image. Raw hits are filtered by
// the similarity threshold and deduplicated by product, keeping the maximum
// similarity per product.
func (s *searchService) ByImage(ctx context.Context, image []byte, topK int) ([]ImageSearchHit, error) {
	if len(image) == 0 {
		return nil, model.NewInvalidInputError("Query image is required")
	}

	records, err := s.ai.Retrieve(ctx, image, topK)
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]float64)
	for _, record := range records {
		if record.Similarity < s.threshold {
			continue
		}
		productID, err := uuid.Parse(record.ItemID())
		if err != nil {
			s.logger.Warn().
				Str("image_id", record.ImageID).
				Str("item_id", record.ItemID()).
				Msg("retrieved record carries an unparseable item id")
			continue
		}
		if record.Similarity > best[productID] {
			best[productID] = record.Similarity
		}
	}

	if len(best) == 0 {
		return []ImageSearchHit{}, nil
	}

	ids := make([]uuid.UUID, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]ImageSearchHit, 0, len(products))
	for id, similarity := range best {
		product, ok := products[id]
		if !ok || !product.Active {
			continue
		}
		hits = append(hits, ImageSearchHit{Product: product, Similarity: similarity})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	s.logger.Debug().
		Int("raw_hits", len(records)).
		Int("results", len(hits)).
		Msg("image search completed")

	return hits, nil
}

// ByImageKey runs ByImage against a stored product image.
func (s *searchService) ByImageKey(ctx context.Context, key string, topK int) ([]ImageSearchHit, error) {
	if key == "" {
		return nil, model.NewInvalidInputError("Image key is required")
	}

	image, err := s.images.Fetch(ctx, key)
	if err != nil {
		return nil, model.NewInvalidInputError(fmt.Sprintf("Unknown image key %q", key))
	}

	return s.ByImage(ctx, image, topK)
}

// ByQuery extracts a constraint from a natural-language query and filters
// the catalogue with it. A "Less" expression bounds price from above, a
// "More" expression from below.
func (s *searchService) ByQuery(ctx context.Context, query string) (*QuerySearchResult, error) {
	if query == "" {
		return nil, model.NewInvalidInputError("Query is required")
	}

	constraint, err := s.ai.ExtractConstraint(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := model.ProductFilter{
		Category:   constraint.Category,
		ActiveOnly: true,
	}
	if constraint.Budget != nil && constraint.Expression != nil {
		switch *constraint.Expression {
		case aiclient.ExpressionLess:
			filter.PriceCeil = constraint.Budget
		case aiclient.ExpressionMore:
			filter.PriceFloor = constraint.Budget
		}
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &QuerySearchResult{
		Products:   products,
		Constraint: *constraint,
	}, nil
}

// Compare analyzes 2-4 products through their reviews.
func (s *searchService) Compare(ctx context.Context, productIDs []uuid.UUID) (*aiclient.CompareResult, error) {
	if len(productIDs) < compareMinProducts || len(productIDs) > compareMaxProducts {
		return nil, model.NewInvalidInputError("Comparison requires between 2 and 4 products")
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	input := make([]aiclient.CompareProduct, 0, len(productIDs))
	for _, id := range productIDs {
		product, ok := products[id]
		if !ok {
			return nil, model.ErrProductNotFound
		}

		reviews, err := s.reviewRepo.ReviewContents(ctx, id, compareReviewLimit)
		if err != nil {
			return nil, err
		}

		input = append(input, aiclient.CompareProduct{
			ID:      product.ID.String(),
			Name:    product.Name,
			Reviews: reviews,
		})
	}

	return s.ai.Compare(ctx, input)
}
