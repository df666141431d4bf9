package models

import (
	"time"

	"natours/internal/domain"
)

type Review struct {
	ID        domain.ID `db:"id" json:"id"`
	Review    string    `db:"review" json:"review"`
	Rating    int       `db:"rating" json:"rating"`
	TourID    domain.ID `db:"tour_id" json:"tour"`
	UserID    domain.ID `db:"user_id" json:"user"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
