package domain

import (
	"math"
	"time"
)

// Image is the hosted image reference for a product, as returned by the
// image-hosting collaborator after upload.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Product represents a catalog product. Rating and NumReviews are derived
// aggregates over the product's reviews and are recomputed transactionally
// whenever a review is added.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Image        Image     `json:"image"`
	Price        int64     `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	Reviews      []Review  `json:"reviews,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InStock reports whether the requested quantity can be fulfilled from the
// current stock level.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && qty <= p.CountInStock
}

// RecalculateRating recomputes the derived Rating and NumReviews fields from
// the Reviews slice. The rating is the arithmetic mean rounded to one
// decimal place; a product with no reviews has rating 0.
func (p *Product) RecalculateRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}

	var sum int
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = RoundRating(float64(sum) / float64(p.NumReviews))
}

// RoundRating rounds a mean rating to one decimal place.
func RoundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}
