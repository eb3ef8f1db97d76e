package domain

import "time"

// Review validation bounds.
const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 200
)

// Review is a customer review of a product. A user may leave at most one
// review per product; reviews are immutable once created.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRating reports whether the rating is an integer in [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ValidComment reports whether the comment length is within bounds.
func ValidComment(comment string) bool {
	n := len([]rune(comment))
	return n >= MinCommentLength && n <= MaxCommentLength
}
