package model

import "time"

// User roles stored in the `role` column and carried in the JWT "role"
// claim.
const (
    RoleCustomer = "CUSTOMER"
    RoleAdmin    = "ADMIN"
)

// User represents a row of the `users` table.  PasswordHash holds the
// bcrypt digest; it never leaves the repository layer.
type User struct {
    ID           uint64    `json:"id"`
    FirstName    string    `json:"first_name"`
    LastName     string    `json:"last_name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
}
