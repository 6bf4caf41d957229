package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type postgresStorage struct {
	*userRepository
	*productRepository
	*categoryRepository
	*orderRepository
	*cartRepository
	*wishlistRepository
	*reviewRepository
	*refreshTokenRepository
}

// NewPostgresStorage creates a Storage backed by the relational schema in
// the migrations directory.
func NewPostgresStorage(db *sql.DB) Storage {
	products := &productRepository{db: db}
	return &postgresStorage{
		userRepository:         &userRepository{db: db},
		productRepository:      products,
		categoryRepository:     &categoryRepository{db: db},
		orderRepository:        &orderRepository{db: db},
		cartRepository:         &cartRepository{db: db},
		wishlistRepository:     &wishlistRepository{db: db, products: products},
		reviewRepository:       &reviewRepository{db: db},
		refreshTokenRepository: &refreshTokenRepository{db: db},
	}
}

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
