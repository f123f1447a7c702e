package seeders

import (
	"database/sql"
	"time"

	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
)

// demoIDs carries the generated account ids so the seeded transactions can
// reference them regardless of which store implementation assigned them.
type demoIDs struct {
	john string
	jane string
	bob  string
}

func (seeder *Seeder) seedAccounts(hashedPassword string) (*demoIDs, error) {
	accounts := []models.Account{
		{
			FirstName:   "John",
			LastName:    "Doe",
			Email:       "john.doe@example.com",
			PhoneNumber: "+1234567890",
			WalletID:    "WAL123456789",
			Balance:     money.Amount(125050),
			CreatedAt:   mustParse("2024-01-15T10:30:00Z"),
		},
		{
			FirstName:   "Jane",
			LastName:    "Smith",
			Email:       "jane.smith@example.com",
			PhoneNumber: "+1234567891",
			WalletID:    "WAL987654321",
			Balance:     money.Amount(89075),
			CreatedAt:   mustParse("2024-02-20T14:15:00Z"),
		},
		{
			FirstName:   "Bob",
			LastName:    "Wilson",
			Email:       "bob.wilson@example.com",
			PhoneNumber: "+1234567892",
			WalletID:    "WAL456789123",
			Balance:     money.Amount(210000),
			CreatedAt:   mustParse("2024-03-10T09:45:00Z"),
		},
	}

	ids := &demoIDs{}

	for i := range accounts {
		accounts[i].HashedPassword = hashedPassword

		id, err := seeder.Store.Account().Insert(&accounts[i])
		if err != nil {
			return nil, err
		}

		// seeded accounts skip email verification
		if err := seeder.Store.Account().Verify(id); err != nil {
			return nil, err
		}

		switch accounts[i].Email {
		case "john.doe@example.com":
			ids.john = id
		case "jane.smith@example.com":
			ids.jane = id
		case "bob.wilson@example.com":
			ids.bob = id
		}
	}

	return ids, nil
}

func (seeder *Seeder) seedTransactions(ids *demoIDs) error {
	// Oldest first, the log keeps the most recent record at the front.
	transactions := []models.Transaction{
		{
			AccountID:   ids.john,
			Kind:        store.TransactionKindWithdraw,
			Amount:      money.Amount(10000),
			Description: "ATM Withdrawal",
			Method:      sql.NullString{String: "atm", Valid: true},
			CreatedAt:   mustParse("2024-10-22T12:15:00Z"),
		},
		{
			AccountID:   ids.john,
			Kind:        store.TransactionKindReceive,
			Amount:      money.Amount(20000),
			Description: "Refund for cancelled order",
			SenderID:    sql.NullString{String: ids.bob, Valid: true},
			CreatedAt:   mustParse("2024-10-23T14:20:00Z"),
		},
		{
			AccountID:   ids.jane,
			Kind:        store.TransactionKindSend,
			Amount:      money.Amount(7550),
			Description: "Coffee and pastries",
			RecipientID: sql.NullString{String: ids.john, Valid: true},
			CreatedAt:   mustParse("2024-10-24T08:45:00Z"),
		},
		{
			AccountID:   ids.john,
			Kind:        store.TransactionKindSend,
			Amount:      money.Amount(15000),
			Description: "Payment for dinner",
			RecipientID: sql.NullString{String: ids.jane, Valid: true},
			CreatedAt:   mustParse("2024-10-24T18:30:00Z"),
		},
		{
			AccountID:   ids.bob,
			Kind:        store.TransactionKindReceive,
			Amount:      money.Amount(50000),
			Description: "Salary deposit",
			CreatedAt:   mustParse("2024-10-25T08:00:00Z"),
		},
		{
			AccountID:   ids.jane,
			Kind:        store.TransactionKindDeposit,
			Amount:      money.Amount(30000),
			Description: "Deposit via Credit Card",
			Method:      sql.NullString{String: "card", Valid: true},
			CreatedAt:   mustParse("2024-10-25T09:00:00Z"),
		},
		{
			AccountID:   ids.john,
			Kind:        store.TransactionKindDeposit,
			Amount:      money.Amount(50000),
			Description: "Deposit via Bank Transfer",
			Method:      sql.NullString{String: "bank", Valid: true},
			CreatedAt:   mustParse("2024-10-25T10:00:00Z"),
		},
	}

	for i := range transactions {
		transactions[i].Status = store.TransactionStatusCompleted

		if _, err := seeder.Store.Transaction().Insert(&transactions[i]); err != nil {
			return err
		}
	}

	return nil
}

func (seeder *Seeder) seedPromotions() error {
	now := time.Now()

	promotions := []models.Promotion{
		{
			Title:       "Legend of Elements",
			Description: "Receive an extra 5% Bonus in all your purchases.",
			ImageURL:    "https://cdn.lunawallet.dev/promotions/legend-of-elements.png",
			EndsAt:      now.Add(11*time.Hour + 36*time.Minute),
		},
		{
			Title:       "Space Voyager",
			Description: "Get a 10% discount on all in-app items.",
			ImageURL:    "https://cdn.lunawallet.dev/promotions/space-voyager.png",
			EndsAt:      now.Add(32*time.Hour + 15*time.Minute),
		},
		{
			Title:       "Mystic Gems",
			Description: "Unlock a free treasure chest with any purchase over $20.",
			ImageURL:    "https://cdn.lunawallet.dev/promotions/mystic-gems.png",
			EndsAt:      now.Add(52*time.Hour + 55*time.Minute),
		},
		{
			Title:       "Cybernetic Heroes",
			Description: "Double your XP for the next 24 hours.",
			ImageURL:    "https://cdn.lunawallet.dev/promotions/cybernetic-heroes.png",
			EndsAt:      now.Add(24*time.Hour - time.Second),
		},
		{
			Title:       "Galactic Empires",
			Description: "Special offer: Buy one starship, get one 50% off.",
			ImageURL:    "https://cdn.lunawallet.dev/promotions/galactic-empires.png",
			EndsAt:      now.Add(132 * time.Hour),
		},
	}

	for i := range promotions {
		if _, err := seeder.Store.Promotion().Insert(&promotions[i]); err != nil {
			return err
		}
	}

	return nil
}
