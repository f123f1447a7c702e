package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountExists       = errors.New("an account with this email already exists")
	ErrSameAccount         = errors.New("you can't transfer to your own account")
)

// Ledger owns every code path that mutates a balance. Each operation
// validates its preconditions in a fixed order, then applies the balance
// effect and appends the transaction records as one atomic step under the
// per-account locks, so a failed precondition never leaves partial state.
type Ledger struct {
	store store.Store

	// delay emulates network latency for UI testing. It is a no-op unless
	// configured with WithDelay.
	delay func()

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

type Option func(*Ledger)

// WithDelay makes every ledger operation sleep through fn before it runs.
func WithDelay(fn func()) Option {
	return func(l *Ledger) {
		l.delay = fn
	}
}

func New(st store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: st,
		delay: func() {},
		muMap: make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Ledger) accountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// lockPair acquires both account locks in id order, so two transfers
// crossing the same accounts in opposite directions cannot deadlock.
func (l *Ledger) lockPair(a, b string) func() {
	first, second := l.accountLock(a), l.accountLock(b)
	if a > b {
		first, second = second, first
	}

	first.Lock()
	second.Lock()

	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// Balance returns the current balance of the account, or zero when the
// account is unknown. No side effects.
func (l *Ledger) Balance(accountID string) (money.Amount, error) {
	l.delay()

	account, found, err := l.store.Account().GetOne(accountID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	return account.Balance, nil
}

// SendMoney moves amount from the sender to the recipient and records the
// transfer as a linked pair of "send" and "receive" transactions. The
// recipient reference is resolved by account id, then wallet id, then phone
// number, first match wins. The returned record is the sender's "send" half.
func (l *Ledger) SendMoney(senderID, recipientRef string, amount money.Amount, description string) (*models.Transaction, error) {
	l.delay()

	if !amount.Positive() {
		return nil, ErrInvalidAmount
	}

	sender, found, err := l.store.Account().GetOne(senderID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSenderNotFound
	}

	recipient, err := l.resolveRecipient(recipientRef)
	if err != nil {
		return nil, err
	}

	if recipient.ID == sender.ID {
		return nil, ErrSameAccount
	}

	unlock := l.lockPair(sender.ID, recipient.ID)
	defer unlock()

	// re-read under the locks; the balance may have moved since the
	// existence check above
	sender, found, err = l.store.Account().GetOne(senderID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSenderNotFound
	}

	if sender.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	now := time.Now()

	sendTxn := &models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   sender.ID,
		Kind:        store.TransactionKindSend,
		Amount:      amount,
		Description: description,
		RecipientID: sql.NullString{String: recipient.ID, Valid: true},
		Status:      store.TransactionStatusCompleted,
		CreatedAt:   now,
	}

	receiveTxn := &models.Transaction{
		ID:            uuid.NewString(),
		AccountID:     recipient.ID,
		Kind:          store.TransactionKindReceive,
		Amount:        amount,
		Description:   description,
		SenderID:      sql.NullString{String: sender.ID, Valid: true},
		CounterpartID: sql.NullString{String: sendTxn.ID, Valid: true},
		Status:        store.TransactionStatusCompleted,
		CreatedAt:     now,
	}
	sendTxn.CounterpartID = sql.NullString{String: receiveTxn.ID, Valid: true}

	err = l.store.Atomic(func(st store.Store) error {
		debited, err := st.Account().Debit(sender.ID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		if _, err := st.Account().Credit(recipient.ID, amount); err != nil {
			// put the money back so the conservation invariant holds
			if _, cerr := st.Account().Credit(sender.ID, amount); cerr != nil {
				return errors.Join(err, fmt.Errorf("restoring sender balance: %w", cerr))
			}
			return err
		}

		// the log is most-recent-first, inserting the receive half first keeps
		// the send record at the front
		if _, err := st.Transaction().Insert(receiveTxn); err != nil {
			return unwindTransfer(st, sender.ID, recipient.ID, amount, err)
		}
		if _, err := st.Transaction().Insert(sendTxn); err != nil {
			return unwindTransfer(st, sender.ID, recipient.ID, amount, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sendTxn, nil
}

// unwindTransfer reverses a transfer's balance effect after the log append
// failed, so the caller never sees money moved without a record. A failed
// reversal is joined onto the cause, because then the books no longer
// balance and the caller must know.
func unwindTransfer(st store.Store, senderID, recipientID string, amount money.Amount, cause error) error {
	if _, err := st.Account().Debit(recipientID, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("reversing recipient credit: %w", err))
	}
	if _, err := st.Account().Credit(senderID, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("restoring sender balance: %w", err))
	}
	return cause
}

// DepositMoney credits the account and appends one "deposit" record.
func (l *Ledger) DepositMoney(accountID string, amount money.Amount, method string) (*models.Transaction, error) {
	l.delay()

	if !amount.Positive() {
		return nil, ErrInvalidAmount
	}

	account, found, err := l.store.Account().GetOne(accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}

	lock := l.accountLock(account.ID)
	lock.Lock()
	defer lock.Unlock()

	transaction := &models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Kind:        store.TransactionKindDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Deposit via %s", method),
		Method:      sql.NullString{String: method, Valid: true},
		Status:      store.TransactionStatusCompleted,
		CreatedAt:   time.Now(),
	}

	err = l.store.Atomic(func(st store.Store) error {
		if _, err := st.Account().Credit(account.ID, amount); err != nil {
			return err
		}

		if _, err := st.Transaction().Insert(transaction); err != nil {
			// take the credited amount back so the balance matches the log
			if _, derr := st.Account().Debit(account.ID, amount); derr != nil {
				return errors.Join(err, fmt.Errorf("reversing deposit credit: %w", derr))
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// WithdrawMoney debits the account and appends one "withdraw" record.
func (l *Ledger) WithdrawMoney(accountID string, amount money.Amount, method string) (*models.Transaction, error) {
	l.delay()

	if !amount.Positive() {
		return nil, ErrInvalidAmount
	}

	account, found, err := l.store.Account().GetOne(accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}

	lock := l.accountLock(account.ID)
	lock.Lock()
	defer lock.Unlock()

	transaction := &models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Kind:        store.TransactionKindWithdraw,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal via %s", method),
		Method:      sql.NullString{String: method, Valid: true},
		Status:      store.TransactionStatusCompleted,
		CreatedAt:   time.Now(),
	}

	err = l.store.Atomic(func(st store.Store) error {
		debited, err := st.Account().Debit(account.ID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		if _, err := st.Transaction().Insert(transaction); err != nil {
			// give the debited amount back so the balance matches the log
			if _, cerr := st.Account().Credit(account.ID, amount); cerr != nil {
				return errors.Join(err, fmt.Errorf("restoring withdrawn amount: %w", cerr))
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// TransactionHistory returns the records where the account is the owner,
// the sender or the recipient, most recent first. The sequence is lazy and
// restartable: every range over it re-reads the log, so iterating twice
// with no mutation in between yields identical results.
func (l *Ledger) TransactionHistory(accountID string) iter.Seq2[models.Transaction, error] {
	return func(yield func(models.Transaction, error) bool) {
		l.delay()

		transactions, err := l.store.Transaction().ListByAccount(accountID)
		if err != nil {
			yield(models.Transaction{}, err)
			return
		}

		for _, txn := range transactions {
			if !yield(txn, nil) {
				return
			}
		}
	}
}

// Register creates a zero-balance account with a freshly generated wallet id.
// Email is the unique key; registering a taken email fails with ErrAccountExists.
func (l *Ledger) Register(account *models.Account) (*models.Account, error) {
	l.delay()

	_, found, err := l.store.Account().GetByEmail(account.Email)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrAccountExists
	}

	account.Balance = 0
	account.WalletID, err = l.generateWalletID()
	if err != nil {
		return nil, err
	}

	// the store enforces email uniqueness inside Insert, so a registration
	// racing past the read check above still comes back as a conflict
	id, err := l.store.Account().Insert(account)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	account.ID = id

	return account, nil
}

func (l *Ledger) resolveRecipient(ref string) (*models.Account, error) {
	lookups := []func(string) (*models.Account, bool, error){
		l.store.Account().GetOne,
		l.store.Account().GetByWalletID,
		l.store.Account().GetByPhoneNumber,
	}

	for _, lookup := range lookups {
		account, found, err := lookup(ref)
		if err != nil {
			return nil, err
		}
		if found {
			return account, nil
		}
	}

	return nil, ErrRecipientNotFound
}

const walletIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (l *Ledger) generateWalletID() (string, error) {
	for {
		b := make([]byte, 9)
		for i := range b {
			b[i] = walletIDAlphabet[rand.IntN(len(walletIDAlphabet))]
		}
		suffix := strconv.FormatInt(time.Now().UnixMilli(), 10)
		walletID := "WAL" + string(b) + suffix[len(suffix)-4:]

		_, taken, err := l.store.Account().GetByWalletID(walletID)
		if err != nil {
			return "", err
		}
		if !taken {
			return walletID, nil
		}
	}
}
