package dto

import (
	"time"

	domainreviews "motomarket/internal/domain/reviews"
)

type ReviewSummary struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	BookingID string    `json:"booking_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Reviews []ReviewSummary `json:"reviews"`
}

func MapReview(review *domainreviews.Review) ReviewSummary {
	if review == nil {
		return ReviewSummary{}
	}
	return ReviewSummary{
		ID:        string(review.ID),
		ServiceID: string(review.ServiceID),
		BookingID: string(review.BookingID),
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

func MapReviewCollection(reviews []*domainreviews.Review) ReviewCollection {
	items := make([]ReviewSummary, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, MapReview(review))
	}
	return ReviewCollection{Reviews: items}
}
