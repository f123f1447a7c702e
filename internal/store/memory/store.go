package memory

import (
	"sync"

	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/store"
)

// Store is the in-memory implementation of store.Store. It is the default
// backend: the whole ledger lives in process memory and is lost on restart.
// All repositories share one mutex so a reader never observes a half-applied
// write across the account table and the transaction log.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*models.Account
	transactions []models.Transaction
	promotions   []models.Promotion

	accountRepo     store.AccountRepository
	transactionRepo store.TransactionRepository
	promotionRepo   store.PromotionRepository

	repoMu sync.Mutex
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
	}
}

func (s *Store) Account() store.AccountRepository {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	if s.accountRepo == nil {
		s.accountRepo = &AccountRepositoryImpl{store: s}
	}
	return s.accountRepo
}

func (s *Store) Transaction() store.TransactionRepository {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	if s.transactionRepo == nil {
		s.transactionRepo = &TransactionRepositoryImpl{store: s}
	}
	return s.transactionRepo
}

func (s *Store) Promotion() store.PromotionRepository {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	if s.promotionRepo == nil {
		s.promotionRepo = &PromotionRepositoryImpl{store: s}
	}
	return s.promotionRepo
}

// Atomic applies fn against the store itself. Memory writes are applied
// statement by statement, so when fn fails midway it must unwind its own
// earlier writes; the ledger's compensation path does exactly that.
func (s *Store) Atomic(fn func(store.Store) error) error {
	return fn(s)
}

func (s *Store) Close() error {
	return nil
}

// Compile-time check: Store implements store.Store
var _ store.Store = (*Store)(nil)
