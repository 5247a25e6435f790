package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/aereosky/flight-booking-api/internal/model"
    "github.com/aereosky/flight-booking-api/internal/utils"
)

// UserRepo persists application users.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create hashes the password and inserts the user, returning the new
// id. Duplicate emails report ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.db.ExecContext(ctx,
        "INSERT INTO users (first_name, last_name, email, password_hash, role) VALUES (?,?,?,?,?)",
        firstName, lastName, email, hash, role)
    if err != nil {
        // MySQL duplicate-key errors carry code 1062.
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u model.User
    err := r.db.QueryRowContext(ctx,
        "SELECT id,first_name,last_name,email,password_hash,role,is_active,created_at FROM users WHERE email=? LIMIT 1",
        email).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    var u model.User
    err := r.db.QueryRowContext(ctx,
        "SELECT id,first_name,last_name,email,password_hash,role,is_active,created_at FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
    return u, err
}
