package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

const userColumns = `id, username, full_name, phone, role, balance, rating, rated_rides, active, available, lat, lng, created_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// Create persists a new user and assigns its identifier.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, full_name, phone, role, balance, rating, rated_rides, active, available, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	return r.q.QueryRowContext(ctx, query,
		user.Username,
		user.FullName,
		user.Phone,
		user.Role,
		user.Balance,
		user.Rating,
		user.RatedRides,
		user.Active,
		user.Available,
		user.Lat,
		user.Lng,
		user.CreatedAt,
	).Scan(&user.ID)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.queryUsers(ctx, query)
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $1, full_name = $2, phone = $3, role = $4, balance = $5,
		    rating = $6, rated_rides = $7, active = $8, available = $9, lat = $10, lng = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		user.Username,
		user.FullName,
		user.Phone,
		user.Role,
		user.Balance,
		user.Rating,
		user.RatedRides,
		user.Active,
		user.Available,
		user.Lat,
		user.Lng,
		user.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AvailableDrivers returns active drivers currently marked available,
// ordered by ascending ID.
func (r *UserRepository) AvailableDrivers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND active AND available ORDER BY id`
	return r.queryUsers(ctx, query, domain.RoleDriver)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.FullName,
			&user.Phone,
			&user.Role,
			&user.Balance,
			&user.Rating,
			&user.RatedRides,
			&user.Active,
			&user.Available,
			&user.Lat,
			&user.Lng,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.Phone,
		&user.Role,
		&user.Balance,
		&user.Rating,
		&user.RatedRides,
		&user.Active,
		&user.Available,
		&user.Lat,
		&user.Lng,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
