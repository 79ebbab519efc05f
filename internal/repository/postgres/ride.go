package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

const rideColumns = `id, rider_id, driver_id, pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address, vehicle_class, distance_km, price,
	status, rating, created_at, accepted_at, started_at, completed_at, cancelled_at`

// RideRepository implements repository.RideRepository using PostgreSQL.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// NextID issues a strictly increasing ride identifier from a dedicated
// sequence starting at 1.
func (r *RideRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT nextval('ride_id_seq')`).Scan(&id)
	return id, err
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, driver_id, pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address, vehicle_class, distance_km, price,
			status, rating, created_at, accepted_at, started_at, completed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullInt64(ride.DriverID),
		ride.Pickup.Lat,
		ride.Pickup.Lng,
		ride.Pickup.Address,
		ride.Dropoff.Lat,
		ride.Dropoff.Lng,
		ride.Dropoff.Address,
		ride.VehicleClass,
		ride.DistanceKm,
		ride.Price,
		ride.Status,
		ride.Rating,
		ride.CreatedAt,
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return ride, err
}

// GetAll retrieves all rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY id DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, rating = $3,
		    accepted_at = $4, started_at = $5, completed_at = $6, cancelled_at = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		nullInt64(ride.DriverID),
		ride.Status,
		ride.Rating,
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.ID,
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

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullInt64
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := s.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.Pickup.Lat,
		&ride.Pickup.Lng,
		&ride.Pickup.Address,
		&ride.Dropoff.Lat,
		&ride.Dropoff.Lng,
		&ride.Dropoff.Address,
		&ride.VehicleClass,
		&ride.DistanceKm,
		&ride.Price,
		&ride.Status,
		&ride.Rating,
		&ride.CreatedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.Int64
	}
	if acceptedAt.Valid {
		ride.AcceptedAt = acceptedAt.Time
	}
	if startedAt.Valid {
		ride.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		ride.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}

	return &ride, nil
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ repository.RideRepository = (*RideRepository)(nil)
