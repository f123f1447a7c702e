package models

import (
	"database/sql"
	"time"

	"github.com/lunawallet/luna/internal/money"
)

type Transaction struct {
	ID          string       `db:"id"`
	AccountID   string       `db:"account_id"`
	Kind        string       `db:"kind"`
	Amount      money.Amount `db:"amount"`
	Description string       `db:"description"`

	// RecipientID is set on "send" records, SenderID on "receive" records,
	// Method on "deposit" and "withdraw" records.
	RecipientID sql.NullString `db:"recipient_id"`
	SenderID    sql.NullString `db:"sender_id"`
	Method      sql.NullString `db:"method"`

	// CounterpartID links the two halves of a transfer together.
	CounterpartID sql.NullString `db:"counterpart_id"`

	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
