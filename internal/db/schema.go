package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(27) NOT NULL PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  email VARCHAR(255) NOT NULL,
  role VARCHAR(20) NOT NULL DEFAULT 'user',
  password_hash VARCHAR(100) NOT NULL,
  password_changed_at DATETIME(3) NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at DATETIME NOT NULL,
  UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tours (
  id VARCHAR(27) NOT NULL PRIMARY KEY,
  name VARCHAR(40) NOT NULL,
  duration INT NOT NULL,
  max_group_size INT NOT NULL,
  difficulty VARCHAR(10) NOT NULL,
  ratings_average DOUBLE NOT NULL DEFAULT 4.5,
  ratings_quantity INT NOT NULL DEFAULT 0,
  price DOUBLE NOT NULL,
  price_discount DOUBLE NULL,
  summary VARCHAR(255) NOT NULL,
  description TEXT NULL,
  image_cover VARCHAR(255) NULL,
  secret_tour BOOLEAN NOT NULL DEFAULT FALSE,
  created_at DATETIME NOT NULL,
  UNIQUE KEY uq_tours_name (name),
  KEY idx_tours_price_rating (price, ratings_average)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tour_start_dates (
  tour_id VARCHAR(27) NOT NULL,
  start_date DATETIME NOT NULL,
  PRIMARY KEY (tour_id, start_date),
  CONSTRAINT fk_start_dates_tour FOREIGN KEY (tour_id) REFERENCES tours(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reviews (
  id VARCHAR(27) NOT NULL PRIMARY KEY,
  review TEXT NOT NULL,
  rating INT NOT NULL,
  tour_id VARCHAR(27) NOT NULL,
  user_id VARCHAR(27) NOT NULL,
  created_at DATETIME NOT NULL,
  UNIQUE KEY uq_reviews_tour_user (tour_id, user_id),
  CONSTRAINT fk_reviews_tour FOREIGN KEY (tour_id) REFERENCES tours(id) ON DELETE CASCADE,
  CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	// widens password_changed_at on tables created with second precision
	`ALTER TABLE users MODIFY password_changed_at DATETIME(3) NULL`,
}

// EnsureSchema creates the tables if they do not exist. It is idempotent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// HasTable reports whether table exists in the current database.
func HasTable(ctx context.Context, db *sqlx.DB, table string) (bool, error) {
	var name string
	err := db.GetContext(ctx, &name, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1`, table)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}
