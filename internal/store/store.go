package store

import (
	"errors"

	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
)

// ErrDuplicateEmail is returned by AccountRepository.Insert when the email
// is already registered. Uniqueness is enforced inside Insert itself, so a
// caller racing another registration still gets a conflict rather than a
// second account with the same email.
var ErrDuplicateEmail = errors.New("duplicate email")

const (
	// AccountActivePending indicates that the account's email has not been verified yet.
	// This is the default status after registration.
	AccountActivePending = "pending"

	// AccountActiveStatus indicates that the account is fully functional.
	AccountActiveStatus = "active"

	// AccountLockedStatus indicates that the account has been locked, for example
	// after repeated failed login attempts. A locked account cannot transact.
	AccountLockedStatus = "locked"
)

// define possible transaction kinds
const (
	TransactionKindSend     = "send"
	TransactionKindReceive  = "receive"
	TransactionKindDeposit  = "deposit"
	TransactionKindWithdraw = "withdraw"
)

// define possible transaction status
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

type AccountRepository interface {
	Insert(account *models.Account) (string, error)
	GetOne(id string) (*models.Account, bool, error)
	GetByEmail(email string) (*models.Account, bool, error)
	GetByWalletID(walletID string) (*models.Account, bool, error)
	GetByPhoneNumber(phoneNumber string) (*models.Account, bool, error)
	GetAll() ([]models.Account, error)
	Credit(id string, amount money.Amount) (bool, error)
	Debit(id string, amount money.Amount) (bool, error)
	Verify(id string) error
	ChangeProfilePicture(id string, image string) error
	Lock(id string) error
}

type TransactionRepository interface {
	Insert(transaction *models.Transaction) (string, error)
	GetOne(id string) (*models.Transaction, bool, error)

	// ListByAccount returns every record where the account is the owner,
	// the sender or the recipient, most recent first.
	ListByAccount(accountID string) ([]models.Transaction, error)
	GetAll() ([]models.Transaction, error)
}

type PromotionRepository interface {
	Insert(promotion *models.Promotion) (string, error)
	GetAllActive() ([]models.Promotion, error)
}

// Store groups the repositories behind a single handle so that the
// in-memory and Postgres implementations can be swapped in config
// without touching calling code.
type Store interface {
	Account() AccountRepository
	Transaction() TransactionRepository
	Promotion() PromotionRepository

	// Atomic runs fn against a store handle whose writes commit or roll back
	// together. The Postgres implementation wraps fn in a database
	// transaction; the in-memory one applies writes directly and relies on
	// the caller to unwind them when fn fails.
	Atomic(fn func(Store) error) error

	Close() error
}
