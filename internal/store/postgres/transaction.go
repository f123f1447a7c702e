package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lunawallet/luna/internal/models"
)

type TransactionRepositoryImpl struct {
	db sqlx.ExtContext
}

func (repo *TransactionRepositoryImpl) Insert(transaction *models.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// honour a caller-generated id; transfers cross-link their two halves
	// before either row exists
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}

	var id string

	query := `
		INSERT INTO transactions (id, account_id, kind, amount, description, recipient_id, sender_id, method, counterpart_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := sqlx.GetContext(ctx, repo.db, &id, query,
		transaction.ID,
		transaction.AccountID,
		transaction.Kind,
		transaction.Amount,
		transaction.Description,
		transaction.RecipientID,
		transaction.SenderID,
		transaction.Method,
		transaction.CounterpartID,
		transaction.Status,
	)
	if err != nil {
		return "", err
	}

	transaction.ID = id
	return id, nil
}

func (repo *TransactionRepositoryImpl) GetOne(id string) (*models.Transaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transaction models.Transaction

	query := `
        SELECT id, account_id, kind, amount, description, recipient_id, sender_id, method, counterpart_id, status, created_at
        FROM transactions WHERE id=$1`

	err := sqlx.GetContext(ctx, repo.db, &transaction, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &transaction, true, nil
}

func (repo *TransactionRepositoryImpl) ListByAccount(accountID string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transactions []models.Transaction

	query := `
        SELECT id, account_id, kind, amount, description, recipient_id, sender_id, method, counterpart_id, status, created_at
        FROM transactions
        WHERE account_id = $1 OR recipient_id = $1 OR sender_id = $1
        ORDER BY created_at DESC`

	err := sqlx.SelectContext(ctx, repo.db, &transactions, query, accountID)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (repo *TransactionRepositoryImpl) GetAll() ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transactions []models.Transaction

	query := `
        SELECT id, account_id, kind, amount, description, recipient_id, sender_id, method, counterpart_id, status, created_at
        FROM transactions ORDER BY created_at DESC`

	err := sqlx.SelectContext(ctx, repo.db, &transactions, query)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
