package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/utils"

	"github.com/jmoiron/sqlx"
)

// tourLookup resolves single tours through the same projection and scope as
// listings.
var tourLookup = query.MustPipeline(TourSchema, query.Options{DefaultLimit: 1, MaxLimit: 1})

// readOnlyTourFields cannot be set through Update.
var readOnlyTourFields = map[string]struct{}{
	"id":              {},
	"createdAt":       {},
	"ratingsAverage":  {},
	"ratingsQuantity": {},
}

// nullableTourFields may be cleared with a JSON null.
var nullableTourFields = map[string]struct{}{
	"priceDiscount": {},
	"description":   {},
	"imageCover":    {},
}

type TourRepository struct {
	DB *sqlx.DB
}

func (r TourRepository) Count(ctx context.Context, q *query.Query) (int, error) {
	n, err := countDocuments(ctx, r.DB, q)
	return n, storeErr("tour", "count tours", err)
}

func (r TourRepository) List(ctx context.Context, q *query.Query) ([]Document, error) {
	docs, err := listDocuments(ctx, r.DB, q)
	return docs, storeErr("tour", "list tours", err)
}

// Get returns one tour with its start dates.
func (r TourRepository) Get(ctx context.Context, id domain.ID) (Document, error) {
	q, err := tourLookup.Build(url.Values{"id": {string(id)}})
	if err != nil {
		return nil, err
	}
	docs, err := listDocuments(ctx, r.DB, q)
	if err != nil {
		return nil, storeErr("tour", "get tour", err)
	}
	if len(docs) == 0 {
		return nil, domain.NotFoundError{Resource: "tour"}
	}

	var dates []time.Time
	if err := r.DB.SelectContext(ctx, &dates, `SELECT start_date FROM tour_start_dates WHERE tour_id = ? ORDER BY start_date`, string(id)); err != nil {
		return nil, storeErr("tour", "get tour start dates", err)
	}
	doc := docs[0]
	doc["startDates"] = dates
	return doc, nil
}

func (r TourRepository) Create(ctx context.Context, t models.Tour) (Document, error) {
	id := NewID()
	if t.RatingsAverage == 0 {
		t.RatingsAverage = 4.5
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("tour", "begin create tour", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tours (id, name, duration, max_group_size, difficulty, ratings_average, ratings_quantity,
			price, price_discount, summary, description, image_cover, secret_tour, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(id), utils.NormalizeSpace(t.Name), t.Duration, t.MaxGroupSize, t.Difficulty, t.RatingsAverage, t.RatingsQuantity,
		t.Price, t.PriceDiscount, strings.TrimSpace(t.Summary), strings.TrimSpace(t.Description), t.ImageCover, t.SecretTour,
		utils.StoreTime(utils.NowUTC()))
	if err != nil {
		return nil, storeErr("tour", "create tour", err)
	}
	for _, d := range t.StartDates {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tour_start_dates (tour_id, start_date) VALUES (?, ?)`, string(id), utils.StoreTime(d)); err != nil {
			return nil, storeErr("tour", "create tour start date", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("tour", "commit create tour", err)
	}

	if t.SecretTour {
		return Document{"id": id, "name": t.Name, "secretTour": true}, nil
	}
	return r.Get(ctx, id)
}

// Update applies a partial document keyed by public field names.
func (r TourRepository) Update(ctx context.Context, id domain.ID, patch map[string]any) (Document, error) {
	sets := []string{}
	args := []any{}
	for name, v := range patch {
		if name == "secretTour" {
			if _, ok := v.(bool); !ok {
				return nil, domain.ValidationError{Field: name, Msg: "expected a bool value"}
			}
			sets = append(sets, "`secret_tour` = ?")
			args = append(args, v)
			continue
		}
		f, ok := tourLookup.Schema().Lookup(name)
		if !ok {
			return nil, domain.ValidationError{Field: name, Msg: "unknown field"}
		}
		if _, ro := readOnlyTourFields[name]; ro {
			return nil, domain.ValidationError{Field: name, Msg: "field cannot be updated"}
		}
		if _, nullable := nullableTourFields[name]; v == nil && !nullable {
			return nil, domain.ValidationError{Field: name, Msg: "cannot be null"}
		}
		if err := checkKind(f, v); err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("`%s` = ?", f.Column))
		args = append(args, v)
	}
	if len(sets) == 0 {
		return r.reread(ctx, id)
	}

	args = append(args, string(id))
	res, err := r.DB.ExecContext(ctx, `UPDATE tours SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, storeErr("tour", "update tour", err)
	}
	if err := requireAffected(res, "tour"); err != nil {
		return nil, err
	}
	return r.reread(ctx, id)
}

// reread returns a tour after a write. Secret tours are hidden from Get, so
// the writer gets the same minimal document Create returns for them.
func (r TourRepository) reread(ctx context.Context, id domain.ID) (Document, error) {
	var row struct {
		Name   string `db:"name"`
		Secret bool   `db:"secret_tour"`
	}
	err := r.DB.GetContext(ctx, &row, `SELECT name, secret_tour FROM tours WHERE id = ?`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError{Resource: "tour"}
	}
	if err != nil {
		return nil, storeErr("tour", "get tour", err)
	}
	if row.Secret {
		return Document{"id": id, "name": row.Name, "secretTour": true}, nil
	}
	return r.Get(ctx, id)
}

func (r TourRepository) Delete(ctx context.Context, id domain.ID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, string(id))
	if err != nil {
		return storeErr("tour", "delete tour", err)
	}
	return requireAffected(res, "tour")
}

// Stats aggregates well-rated tours per difficulty.
func (r TourRepository) Stats(ctx context.Context) ([]models.TourStats, error) {
	stats := []models.TourStats{}
	err := r.DB.SelectContext(ctx, &stats, `
		SELECT UPPER(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price
		FROM tours
		WHERE ratings_average >= 4.5 AND secret_tour = FALSE
		GROUP BY UPPER(difficulty)
		ORDER BY avg_price ASC`)
	if err != nil {
		return nil, storeErr("tour", "tour stats", err)
	}
	return stats, nil
}

// MonthlyPlan counts tour starts per month of year, busiest month first.
func (r TourRepository) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	plan := []models.MonthlyPlan{}
	err := r.DB.SelectContext(ctx, &plan, `
		SELECT MONTH(sd.start_date) AS month,
			COUNT(*) AS num_tour_starts,
			GROUP_CONCAT(t.name ORDER BY t.name SEPARATOR '\n') AS tours
		FROM tour_start_dates sd
		JOIN tours t ON t.id = sd.tour_id
		WHERE sd.start_date >= ? AND sd.start_date < ? AND t.secret_tour = FALSE
		GROUP BY MONTH(sd.start_date)
		ORDER BY num_tour_starts DESC, month ASC
		LIMIT 12`, from, to)
	if err != nil {
		return nil, storeErr("tour", "monthly plan", err)
	}
	for i := range plan {
		plan[i].TourNames = strings.Split(plan[i].Tours, "\n")
	}
	return plan, nil
}

// checkKind validates a decoded JSON value against the field kind.
func checkKind(f query.Field, v any) error {
	if v == nil {
		return nil
	}
	ok := true
	switch f.Kind {
	case query.KindInt:
		n, isNum := v.(float64)
		ok = isNum && n == float64(int64(n))
	case query.KindNumber:
		_, ok = v.(float64)
	case query.KindBool:
		_, ok = v.(bool)
	case query.KindString:
		_, ok = v.(string)
	case query.KindTime:
		s, isStr := v.(string)
		if ok = isStr; ok {
			_, err := time.Parse(time.RFC3339, s)
			ok = err == nil
		}
	}
	if !ok {
		return domain.ValidationError{Field: f.Name, Msg: "expected a " + f.Kind.String() + " value"}
	}
	return nil
}
