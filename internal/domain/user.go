package domain

import "time"

// Role represents what a user is allowed to do in the system.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// User represents a rider, driver, or admin. A driver is a user with
// RoleDriver plus the availability projection (Available, Lat, Lng).
// Users are deactivated, never deleted.
type User struct {
	ID         int64
	Username   string
	FullName   string
	Phone      string
	Role       Role
	Balance    float64
	Rating     float64 // 0..5, defaults to 5.0 for new users
	RatedRides int64   // number of rides contributing to Rating
	Active     bool

	// Driver availability projection. Mutated only by the driver's own
	// activate/deactivate action.
	Available bool
	Lat       float64
	Lng       float64

	CreatedAt time.Time
}

// DefaultRating is the rating assigned to newly created users.
const DefaultRating = 5.0

// IsDriver reports whether the user can take rides.
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}
