package memory

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/store"
)

type TransactionRepositoryImpl struct {
	store *Store
}

func (repo *TransactionRepositoryImpl) Insert(transaction *models.Transaction) (string, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	if transaction.Status == "" {
		transaction.Status = store.TransactionStatusCompleted
	}

	// the log is kept most-recent-first, new records go to the front
	repo.store.transactions = append([]models.Transaction{*transaction}, repo.store.transactions...)

	return transaction.ID, nil
}

func (repo *TransactionRepositoryImpl) GetOne(id string) (*models.Transaction, bool, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	for i := range repo.store.transactions {
		if repo.store.transactions[i].ID == id {
			clone := repo.store.transactions[i]
			return &clone, true, nil
		}
	}

	return nil, false, nil
}

func (repo *TransactionRepositoryImpl) ListByAccount(accountID string) ([]models.Transaction, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	var result []models.Transaction
	for _, txn := range repo.store.transactions {
		if txn.AccountID == accountID ||
			(txn.RecipientID.Valid && txn.RecipientID.String == accountID) ||
			(txn.SenderID.Valid && txn.SenderID.String == accountID) {
			result = append(result, txn)
		}
	}

	return result, nil
}

func (repo *TransactionRepositoryImpl) GetAll() ([]models.Transaction, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	return slices.Clone(repo.store.transactions), nil
}
