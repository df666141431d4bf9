package repositories

import (
	"context"
	"strings"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/utils"

	"github.com/jmoiron/sqlx"
)

type ReviewRepository struct {
	DB *sqlx.DB
}

func (r ReviewRepository) Count(ctx context.Context, q *query.Query) (int, error) {
	n, err := countDocuments(ctx, r.DB, q)
	return n, storeErr("review", "count reviews", err)
}

func (r ReviewRepository) List(ctx context.Context, q *query.Query) ([]Document, error) {
	docs, err := listDocuments(ctx, r.DB, q)
	return docs, storeErr("review", "list reviews", err)
}

// Create stores a review and refreshes the tour's rating aggregate in the
// same transaction.
func (r ReviewRepository) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	rv.ID = NewID()
	rv.Review = strings.TrimSpace(rv.Review)
	rv.CreatedAt = utils.StoreTime(utils.NowUTC())

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.Review{}, storeErr("review", "begin create review", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM tours WHERE id = ? AND secret_tour = FALSE`, string(rv.TourID)); err != nil {
		return models.Review{}, storeErr("review", "check tour", err)
	}
	if exists == 0 {
		return models.Review{}, domain.NotFoundError{Resource: "tour"}
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO reviews (id, review, rating, tour_id, user_id, created_at)
		VALUES (:id, :review, :rating, :tour_id, :user_id, :created_at)`, rv)
	if err != nil {
		return models.Review{}, storeErr("review", "create review", err)
	}
	if err := recalcRatings(ctx, tx, string(rv.TourID)); err != nil {
		return models.Review{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Review{}, storeErr("review", "commit create review", err)
	}
	return rv, nil
}

// recalcRatings resets a tour's average to the default when it has no
// reviews left.
func recalcRatings(ctx context.Context, tx *sqlx.Tx, tourID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tours t
		SET t.ratings_quantity = (SELECT COUNT(*) FROM reviews r WHERE r.tour_id = t.id),
			t.ratings_average = COALESCE((SELECT ROUND(AVG(r.rating), 1) FROM reviews r WHERE r.tour_id = t.id), 4.5)
		WHERE t.id = ?`, tourID)
	return storeErr("tour", "recalculate ratings", err)
}
