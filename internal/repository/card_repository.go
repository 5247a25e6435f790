package repository

import (
    "context"
    "database/sql"

    "github.com/aereosky/flight-booking-api/internal/model"
    "github.com/aereosky/flight-booking-api/internal/utils"
)

// CardRepo persists stored payment cards. Card numbers are kept as
// normalized digit strings and are only ever exposed masked.
type CardRepo struct {
    db *sql.DB
}

// NewCardRepo returns a CardRepo bound to the given database.
func NewCardRepo(db *sql.DB) *CardRepo { return &CardRepo{db: db} }

// MaskedCard is the client-facing card shape: the number reduced to
// its last four digits.
type MaskedCard struct {
    ID           uint64 `json:"id"`
    MaskedNumber string `json:"masked_number"`
    ExpiresAt    string `json:"expires_at"`
    Brand        string `json:"brand"`
}

// ListByUser returns the user's stored cards, newest first, with
// numbers masked.
func (r *CardRepo) ListByUser(ctx context.Context, userID uint64) ([]MaskedCard, error) {
    const q = `SELECT id, card_number, expires_at, brand
               FROM credit_cards
               WHERE user_id = ?
               ORDER BY id DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    cards := make([]MaskedCard, 0)
    for rows.Next() {
        var c MaskedCard
        var number string
        if err := rows.Scan(&c.ID, &number, &c.ExpiresAt, &c.Brand); err != nil {
            return nil, err
        }
        c.MaskedNumber = utils.MaskCardNumber(number)
        cards = append(cards, c)
    }
    return cards, rows.Err()
}

// Create normalizes and stores a new card. The brand is detected from
// the digits when the caller does not supply one. Returns
// ErrInvalidCard when the number contains no digits.
func (r *CardRepo) Create(ctx context.Context, card *model.CreditCard) error {
    digits := utils.NormalizeCardNumber(card.Number)
    if digits == "" {
        return ErrInvalidCard
    }
    if card.Brand == "" {
        card.Brand = utils.DetectCardBrand(digits)
    }
    const q = `INSERT INTO credit_cards (user_id, card_number, expires_at, security_code, brand)
               VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, card.UserID, digits, card.ExpiresAt, card.SecurityCode, card.Brand)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    card.ID = uint64(id)
    card.Number = digits
    return nil
}

// CreateTx is Create inside an existing transaction, used by the
// purchase flow so that a card inserted for a failing purchase is
// rolled back with everything else.
func (r *CardRepo) CreateTx(ctx context.Context, tx *sql.Tx, card *model.CreditCard) error {
    digits := utils.NormalizeCardNumber(card.Number)
    if digits == "" {
        return ErrInvalidCard
    }
    if card.Brand == "" {
        card.Brand = utils.DetectCardBrand(digits)
    }
    const q = `INSERT INTO credit_cards (user_id, card_number, expires_at, security_code, brand)
               VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, card.UserID, digits, card.ExpiresAt, card.SecurityCode, card.Brand)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    card.ID = uint64(id)
    card.Number = digits
    return nil
}

// VerifyOwnershipTx checks, inside the purchase transaction, that the
// card exists and belongs to the given user. Returns ErrForbidden when
// it belongs to someone else or does not exist; the two cases are not
// distinguished so the API does not leak which card ids exist.
func (r *CardRepo) VerifyOwnershipTx(ctx context.Context, tx *sql.Tx, cardID, userID uint64) error {
    const q = `SELECT id FROM credit_cards WHERE id = ? AND user_id = ?`
    var id uint64
    err := tx.QueryRowContext(ctx, q, cardID, userID).Scan(&id)
    if err == sql.ErrNoRows {
        return ErrForbidden
    }
    return err
}

// Delete removes a stored card. Returns sql.ErrNoRows when the card
// does not exist.
func (r *CardRepo) Delete(ctx context.Context, cardID uint64) error {
    const q = `DELETE FROM credit_cards WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, cardID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}
