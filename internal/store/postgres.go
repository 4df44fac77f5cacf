package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomstack/backend/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore keeps products, users and cart counts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name       TEXT         NOT NULL DEFAULT '',
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS products (
			seq        BIGSERIAL,
			id         INTEGER PRIMARY KEY,
			name       TEXT             NOT NULL,
			image      TEXT             NOT NULL,
			category   TEXT             NOT NULL,
			new_price  DOUBLE PRECISION NOT NULL,
			old_price  DOUBLE PRECISION NOT NULL,
			date       TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			available  BOOLEAN          NOT NULL DEFAULT TRUE
		);
		CREATE INDEX IF NOT EXISTS products_category_idx ON products (category, seq);
		CREATE TABLE IF NOT EXISTS cart_items (
			user_id UUID    NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			slot    INTEGER NOT NULL CHECK (slot >= 0 AND slot < 300),
			count   INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
			PRIMARY KEY (user_id, slot)
		);
	`)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// InsertProduct assigns the next id (highest existing + 1) inside the insert itself;
// a concurrent insert that picks the same id fails on the primary key and is retried.
func (s *PostgresStore) InsertProduct(ctx context.Context, p *models.Product) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		err := s.pool.QueryRow(ctx,
			`INSERT INTO products (id, name, image, category, new_price, old_price, date, available)
			 VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM products), $1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.Date, p.Available,
		).Scan(&p.ID)
		if isPgCode(err, pgUniqueViolation) {
			continue
		}
		if err != nil {
			return fmt.Errorf("postgres insert product: %w", err)
		}
		return nil
	}
	return fmt.Errorf("postgres insert product: %w", models.ErrConflict)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id int) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres delete product: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.queryProducts(ctx,
		`SELECT id, name, image, category, new_price, old_price, date, available
		 FROM products ORDER BY seq`)
}

func (s *PostgresStore) ListProductsByCategory(ctx context.Context, category string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return s.queryProducts(ctx,
			`SELECT id, name, image, category, new_price, old_price, date, available
			 FROM products WHERE category = $1 ORDER BY seq`, category)
	}
	return s.queryProducts(ctx,
		`SELECT id, name, image, category, new_price, old_price, date, available
		 FROM products WHERE category = $1 ORDER BY seq LIMIT $2`, category, limit)
}

func (s *PostgresStore) queryProducts(ctx context.Context, sql string, args ...any) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.NewPrice, &p.OldPrice, &p.Date, &p.Available); err != nil {
			return nil, fmt.Errorf("postgres scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres query products: %w", err)
	}
	return products, nil
}

// CreateUser inserts the user. Cart rows are created lazily; absent slots read as zero.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.Date.IsZero() {
		u.Date = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		u.Name, u.Email, u.Password, u.Date,
	).Scan(&u.ID)
	if isPgCode(err, pgUniqueViolation) {
		return fmt.Errorf("postgres create user: %w", models.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("postgres create user: %w", err)
	}
	u.Cart = models.NewCart()
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	if err := s.userExists(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT slot, count FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres get cart: %w", err)
	}
	defer rows.Close()

	cart := models.NewCart()
	for rows.Next() {
		var slot, count int
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("postgres scan cart: %w", err)
		}
		cart[slot] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres get cart: %w", err)
	}
	return cart, nil
}

func (s *PostgresStore) IncrementCartSlot(ctx context.Context, userID string, slot int) error {
	if _, err := uuid.Parse(userID); err != nil {
		return models.ErrNotFound
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, slot, count) VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, slot) DO UPDATE SET count = cart_items.count + 1`,
		userID, slot,
	)
	if isPgCode(err, pgForeignKeyViolation) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres increment cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) DecrementCartSlot(ctx context.Context, userID string, slot int) error {
	if _, err := uuid.Parse(userID); err != nil {
		return models.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE cart_items SET count = count - 1
		 WHERE user_id = $1 AND slot = $2 AND count > 0`,
		userID, slot,
	)
	if err != nil {
		return fmt.Errorf("postgres decrement cart: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return s.userExists(ctx, userID)
}

func (s *PostgresStore) userExists(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return models.ErrNotFound
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres user lookup: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
