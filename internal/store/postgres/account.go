package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
)

type AccountRepositoryImpl struct {
	db sqlx.ExtContext
}

func (repo *AccountRepositoryImpl) Insert(account *models.Account) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO accounts (first_name, last_name, email, phone_number, wallet_id, balance, hashed_password, hashed_passcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := sqlx.GetContext(ctx, repo.db, &id, query,
		account.FirstName,
		account.LastName,
		account.Email,
		account.PhoneNumber,
		account.WalletID,
		account.Balance,
		account.HashedPassword,
		account.HashedPasscode,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && strings.Contains(pqErr.Constraint, "email") {
			return "", store.ErrDuplicateEmail
		}
		return "", err
	}

	return id, nil
}

func (repo *AccountRepositoryImpl) GetOne(id string) (*models.Account, bool, error) {
	// compared as text so an arbitrary recipient reference can be probed
	// against the id column without tripping the uuid parser
	return repo.getBy("id::text", id)
}

func (repo *AccountRepositoryImpl) GetByEmail(email string) (*models.Account, bool, error) {
	return repo.getBy("email", email)
}

func (repo *AccountRepositoryImpl) GetByWalletID(walletID string) (*models.Account, bool, error) {
	return repo.getBy("wallet_id", walletID)
}

func (repo *AccountRepositoryImpl) GetByPhoneNumber(phoneNumber string) (*models.Account, bool, error) {
	return repo.getBy("phone_number", phoneNumber)
}

func (repo *AccountRepositoryImpl) getBy(column, value string) (*models.Account, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var account models.Account

	query := `
        SELECT id, first_name, last_name, email, phone_number, wallet_id, balance, image, status, hashed_password, hashed_passcode, created_at, verified_at
        FROM accounts WHERE ` + column + `=$1`

	err := sqlx.GetContext(ctx, repo.db, &account, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &account, true, nil
}

func (repo *AccountRepositoryImpl) GetAll() ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var accounts []models.Account

	query := `
        SELECT id, first_name, last_name, email, phone_number, wallet_id, balance, image, status, created_at, verified_at
        FROM accounts ORDER BY created_at DESC`

	err := sqlx.SelectContext(ctx, repo.db, &accounts, query)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (repo *AccountRepositoryImpl) Credit(id string, amount money.Amount) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
        UPDATE accounts SET balance = balance + $1 WHERE id = $2`

	result, err := repo.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *AccountRepositoryImpl) Debit(id string, amount money.Amount) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// balance >= amount makes the check-and-debit a single atomic statement,
	// the CHECK constraint on the table is the last line of defence
	query := `
        UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1`

	result, err := repo.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *AccountRepositoryImpl) Verify(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
        UPDATE accounts SET status = $1, verified_at = NOW() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, store.AccountActiveStatus, id)
	return err
}

func (repo *AccountRepositoryImpl) ChangeProfilePicture(id string, image string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
        UPDATE accounts SET image = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, image, id)
	return err
}

func (repo *AccountRepositoryImpl) Lock(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
        UPDATE accounts SET status = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, store.AccountLockedStatus, id)
	return err
}
