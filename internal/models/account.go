package models

import (
	"database/sql"
	"time"

	"github.com/lunawallet/luna/internal/money"
)

type Account struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PhoneNumber    string         `db:"phone_number"`
	WalletID       string         `db:"wallet_id"`
	Balance        money.Amount   `db:"balance"`
	Image          sql.NullString `db:"image"`
	Status         string         `db:"status"`
	HashedPassword string         `db:"hashed_password"`
	HashedPasscode sql.NullString `db:"hashed_passcode"`
	CreatedAt      time.Time      `db:"created_at"`
	VerifiedAt     sql.NullTime   `db:"verified_at"`
}
