package models

import "time"

// Tour is the write model used by create and update. Reads go through the
// query pipeline and come back as projected documents.
type Tour struct {
	Name            string      `json:"name" binding:"required"`
	Duration        int         `json:"duration" binding:"required,gt=0"`
	MaxGroupSize    int         `json:"maxGroupSize" binding:"required,gt=0"`
	Difficulty      string      `json:"difficulty" binding:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `json:"ratingsAverage"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Price           float64     `json:"price" binding:"required,gt=0"`
	PriceDiscount   *float64    `json:"priceDiscount"`
	Summary         string      `json:"summary" binding:"required"`
	Description     string      `json:"description"`
	ImageCover      string      `json:"imageCover"`
	SecretTour      bool        `json:"secretTour"`
	StartDates      []time.Time `json:"startDates"`
}

// TourStats is one row of the per-difficulty aggregate.
type TourStats struct {
	Difficulty string  `db:"difficulty" json:"difficulty"`
	NumTours   int     `db:"num_tours" json:"numTours"`
	NumRatings int     `db:"num_ratings" json:"numRatings"`
	AvgRating  float64 `db:"avg_rating" json:"avgRating"`
	AvgPrice   float64 `db:"avg_price" json:"avgPrice"`
	MinPrice   float64 `db:"min_price" json:"minPrice"`
	MaxPrice   float64 `db:"max_price" json:"maxPrice"`
}

// MonthlyPlan counts tour starts in one month of a year.
type MonthlyPlan struct {
	Month         int      `db:"month" json:"month"`
	NumTourStarts int      `db:"num_tour_starts" json:"numTourStarts"`
	Tours         string   `db:"tours" json:"-"`
	TourNames     []string `db:"-" json:"tours"`
}
