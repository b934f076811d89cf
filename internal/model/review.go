package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Review content constraints.
const (
	ReviewMinRating        = 1
	ReviewMaxRating        = 5
	ReviewMinContentLength = 10
	ReviewMaxContentLength = 1000

	// AnonymousAuthorName is rendered in place of the author identity when
	// the anonymity flag is set. The stored author reference is retained for
	// ownership checks regardless.
	AnonymousAuthorName = "Anonymous User"
)

// Review is a product review. At most one per (product, user), enforced by
// a uniqueness constraint at the storage layer.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Content   string    `json:"content" db:"content"`
	Anonymous bool      `json:"anonymous" db:"anonymous"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ReviewView is a review prepared for the read boundary: anonymous reviews
// carry a placeholder author name and suppress the author reference.
type ReviewView struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"productId"`
	AuthorID   *uuid.UUID `json:"authorId,omitempty"`
	AuthorName string     `json:"authorName"`
	Rating     int        `json:"rating"`
	Content    string     `json:"content"`
	Anonymous  bool       `json:"anonymous"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// RenderReview applies anonymity masking at the read boundary.
func RenderReview(r Review, authorName string) ReviewView {
	v := ReviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Content:   r.Content,
		Anonymous: r.Anonymous,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Anonymous {
		v.AuthorName = AnonymousAuthorName
	} else {
		userID := r.UserID
		v.AuthorID = &userID
		v.AuthorName = authorName
	}
	return v
}

// AverageRating returns the mean of the ratings rounded to one decimal
// place, or 0 when there are no ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}

// ValidateReviewInput checks rating range and content length.
func ValidateReviewInput(rating int, content string) error {
	if rating < ReviewMinRating || rating > ReviewMaxRating {
		return NewInvalidInputError("Rating must be between 1 and 5")
	}
	if n := len(content); n < ReviewMinContentLength || n > ReviewMaxContentLength {
		return NewInvalidInputError("Review content must be between 10 and 1000 characters")
	}
	return nil
}

// CreateReviewRequest is the payload for creating a review.
type CreateReviewRequest struct {
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	Anonymous bool   `json:"anonymous"`
}

// UpdateReviewRequest is the payload for editing a review. Nil fields are
// left unchanged.
type UpdateReviewRequest struct {
	Rating    *int    `json:"rating,omitempty"`
	Content   *string `json:"content,omitempty"`
	Anonymous *bool   `json:"anonymous,omitempty"`
}

// ReviewSort describes review listing order.
type ReviewSort struct {
	By     string // "createdAt" or "rating"
	Desc   bool
	Limit  int
	Offset int
}
