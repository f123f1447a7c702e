package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
)

type AccountRepositoryImpl struct {
	store *Store
}

func (repo *AccountRepositoryImpl) Insert(account *models.Account) (string, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	// the check runs under the same write lock as the insert, mirroring the
	// UNIQUE constraint on the Postgres accounts table
	for _, existing := range repo.store.accounts {
		if existing.Email == account.Email {
			return "", store.ErrDuplicateEmail
		}
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	if account.Status == "" {
		account.Status = store.AccountActivePending
	}

	clone := *account
	repo.store.accounts[account.ID] = &clone

	return account.ID, nil
}

func (repo *AccountRepositoryImpl) GetOne(id string) (*models.Account, bool, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return nil, false, nil
	}

	clone := *account
	return &clone, true, nil
}

func (repo *AccountRepositoryImpl) GetByEmail(email string) (*models.Account, bool, error) {
	return repo.findOne(func(account *models.Account) bool {
		return account.Email == email
	})
}

func (repo *AccountRepositoryImpl) GetByWalletID(walletID string) (*models.Account, bool, error) {
	return repo.findOne(func(account *models.Account) bool {
		return account.WalletID == walletID
	})
}

func (repo *AccountRepositoryImpl) GetByPhoneNumber(phoneNumber string) (*models.Account, bool, error) {
	return repo.findOne(func(account *models.Account) bool {
		return account.PhoneNumber == phoneNumber
	})
}

func (repo *AccountRepositoryImpl) findOne(match func(*models.Account) bool) (*models.Account, bool, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	for _, account := range repo.store.accounts {
		if match(account) {
			clone := *account
			return &clone, true, nil
		}
	}

	return nil, false, nil
}

func (repo *AccountRepositoryImpl) GetAll() ([]models.Account, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	accounts := make([]models.Account, 0, len(repo.store.accounts))
	for _, account := range repo.store.accounts {
		accounts = append(accounts, *account)
	}

	return accounts, nil
}

func (repo *AccountRepositoryImpl) Credit(id string, amount money.Amount) (bool, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return false, nil
	}

	account.Balance += amount
	return true, nil
}

func (repo *AccountRepositoryImpl) Debit(id string, amount money.Amount) (bool, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return false, nil
	}

	// the guard here mirrors the "balance >= amount" clause of the
	// Postgres implementation; a balance can never go negative
	if account.Balance < amount {
		return false, nil
	}

	account.Balance -= amount
	return true, nil
}

func (repo *AccountRepositoryImpl) Verify(id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return nil
	}

	account.Status = store.AccountActiveStatus
	account.VerifiedAt.Time = time.Now()
	account.VerifiedAt.Valid = true
	return nil
}

func (repo *AccountRepositoryImpl) ChangeProfilePicture(id string, image string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return nil
	}

	account.Image.String = image
	account.Image.Valid = true
	return nil
}

func (repo *AccountRepositoryImpl) Lock(id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account, ok := repo.store.accounts[id]
	if !ok {
		return nil
	}

	account.Status = store.AccountLockedStatus
	return nil
}
