package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lunawallet/luna/assets"
	"github.com/lunawallet/luna/internal/store"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Store is the Postgres implementation of store.Store. It exists so that
// the in-memory ledger can be swapped for a durable one in config alone;
// the ledger and handlers never know which one they are talking to.
type Store struct {
	db *sqlx.DB

	// ext is what the repositories run their statements against. It is the
	// pool itself on the root store and a *sqlx.Tx inside Atomic.
	ext sqlx.ExtContext

	accountRepo     store.AccountRepository
	transactionRepo store.TransactionRepository
	promotionRepo   store.PromotionRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &Store{db: db, ext: db}, nil
}

// Atomic runs fn inside a single database transaction. Every repository
// call fn makes through the passed store rides on the same *sqlx.Tx, so a
// transfer's debit, credit and both log appends commit or roll back as one.
func (s *Store) Atomic(fn func(store.Store) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, ext: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Account() store.AccountRepository {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountRepo == nil {
		s.accountRepo = &AccountRepositoryImpl{db: s.ext}
	}
	return s.accountRepo
}

func (s *Store) Transaction() store.TransactionRepository {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transactionRepo == nil {
		s.transactionRepo = &TransactionRepositoryImpl{db: s.ext}
	}
	return s.transactionRepo
}

func (s *Store) Promotion() store.PromotionRepository {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.promotionRepo == nil {
		s.promotionRepo = &PromotionRepositoryImpl{db: s.ext}
	}
	return s.promotionRepo
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Compile-time check: Store implements store.Store
var _ store.Store = (*Store)(nil)
