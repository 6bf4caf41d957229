package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a buyer's rating of a product
type Review struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReviewWithUser is a review with its author attached.
type ReviewWithUser struct {
	Review
	User *User `json:"user"`
}

// AverageRating returns the mean rating and the review count. The mean is
// nil when there are no reviews.
func AverageRating(ratings []int) (*float64, int) {
	if len(ratings) == 0 {
		return nil, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg, len(ratings)
}
