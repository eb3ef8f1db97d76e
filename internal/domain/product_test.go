package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_InStock(t *testing.T) {
	p := Product{CountInStock: 3}

	assert.True(t, p.InStock(1))
	assert.True(t, p.InStock(3))
	assert.False(t, p.InStock(4))
	assert.False(t, p.InStock(0))
	assert.False(t, p.InStock(-1))
}

func TestProduct_RecalculateRating_Empty(t *testing.T) {
	p := Product{Rating: 4.5, NumReviews: 9}
	p.Reviews = nil

	p.RecalculateRating()

	assert.Equal(t, 0, p.NumReviews)
	assert.Equal(t, 0.0, p.Rating)
}

func TestProduct_RecalculateRating_SingleReview(t *testing.T) {
	p := Product{Reviews: []Review{{Rating: 4}}}

	p.RecalculateRating()

	assert.Equal(t, 1, p.NumReviews)
	assert.Equal(t, 4.0, p.Rating)
}

func TestProduct_RecalculateRating_RoundsToOneDecimal(t *testing.T) {
	// (5 + 4 + 4) / 3 = 4.333... -> 4.3
	p := Product{Reviews: []Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}}

	p.RecalculateRating()

	assert.Equal(t, 3, p.NumReviews)
	assert.Equal(t, 4.3, p.Rating)
}

func TestProduct_RecalculateRating_RoundsHalfUp(t *testing.T) {
	// (4 + 5) / 2 = 4.5 stays 4.5; (1 + 2 + 2 + 2) / 4 = 1.75 -> 1.8
	p := Product{Reviews: []Review{{Rating: 1}, {Rating: 2}, {Rating: 2}, {Rating: 2}}}

	p.RecalculateRating()

	assert.Equal(t, 1.8, p.Rating)
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		mean float64
		want float64
	}{
		{0, 0},
		{4.333333, 4.3},
		{4.35, 4.4},
		{4.999, 5.0},
		{5, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundRating(tt.mean))
	}
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(3))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
	assert.False(t, ValidRating(-2))
}

func TestValidComment(t *testing.T) {
	assert.False(t, ValidComment("too short"))
	assert.True(t, ValidComment("works great so far"))
	assert.True(t, ValidComment("exactly10!"))

	long := make([]rune, MaxCommentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ValidComment(string(long)))
	assert.True(t, ValidComment(string(long[:MaxCommentLength])))
}
