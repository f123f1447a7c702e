package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/store/memory"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, store.Store) {
	t.Helper()

	st := memory.New()
	return New(st), st
}

func seedAccount(t *testing.T, st store.Store, name, email, phone, walletID string, balance money.Amount) *models.Account {
	t.Helper()

	account := &models.Account{
		FirstName:   name,
		LastName:    "Tester",
		Email:       email,
		PhoneNumber: phone,
		WalletID:    walletID,
		Balance:     balance,
		Status:      store.AccountActiveStatus,
	}

	id, err := st.Account().Insert(account)
	require.NoError(t, err)
	account.ID = id

	return account
}

func collectHistory(t *testing.T, l *Ledger, accountID string) []models.Transaction {
	t.Helper()

	var transactions []models.Transaction
	for txn, err := range l.TransactionHistory(accountID) {
		require.NoError(t, err)
		transactions = append(transactions, txn)
	}
	return transactions
}

func TestSendMoney_TransfersBetweenAccounts(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(125050))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(89075))

	sendTxn, err := l.SendMoney(a.ID, b.ID, money.Amount(15000), "Payment for dinner")
	require.NoError(t, err)
	require.NotNil(t, sendTxn)

	balanceA, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(110050), balanceA)

	balanceB, err := l.Balance(b.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(104075), balanceB)

	// a sees both halves: its own send record, and the receive record
	// naming it as the sender
	historyA := collectHistory(t, l, a.ID)
	require.Len(t, historyA, 2)

	require.Equal(t, store.TransactionKindSend, historyA[0].Kind)
	require.Equal(t, money.Amount(15000), historyA[0].Amount)
	require.Equal(t, b.ID, historyA[0].RecipientID.String)
	require.Equal(t, "Payment for dinner", historyA[0].Description)

	historyB := collectHistory(t, l, b.ID)

	var receive *models.Transaction
	for i := range historyB {
		if historyB[i].Kind == store.TransactionKindReceive {
			receive = &historyB[i]
			break
		}
	}
	require.NotNil(t, receive)
	require.Equal(t, money.Amount(15000), receive.Amount)
	require.Equal(t, a.ID, receive.SenderID.String)

	// the two halves point at each other
	require.Equal(t, receive.ID, historyA[0].CounterpartID.String)
	require.Equal(t, historyA[0].ID, receive.CounterpartID.String)
}

func TestSendMoney_InsufficientBalance(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(0))

	_, err := l.SendMoney(a.ID, b.ID, money.Amount(15000), "too much")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// nothing changed, nothing was recorded
	balanceA, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(10000), balanceA)

	balanceB, err := l.Balance(b.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(0), balanceB)

	require.Empty(t, collectHistory(t, l, a.ID))
	require.Empty(t, collectHistory(t, l, b.ID))
}

func TestSendMoney_PreconditionOrder(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))

	_, err := l.SendMoney(a.ID, a.ID, money.Amount(100), "to self")
	require.ErrorIs(t, err, ErrSameAccount)

	_, err = l.SendMoney(a.ID, "no-such-recipient", money.Amount(100), "nobody")
	require.ErrorIs(t, err, ErrRecipientNotFound)

	// an unknown sender wins over an unknown recipient
	_, err = l.SendMoney("no-such-sender", "no-such-recipient", money.Amount(100), "nobody")
	require.ErrorIs(t, err, ErrSenderNotFound)

	_, err = l.SendMoney("no-such-sender", a.ID, money.Amount(0), "free money")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.SendMoney(a.ID, a.ID, money.Amount(-100), "negative")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSendMoney_ResolvesRecipientReference(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(100000))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(0))

	_, err := l.SendMoney(a.ID, "WALBBB000002", money.Amount(1000), "by wallet id")
	require.NoError(t, err)

	_, err = l.SendMoney(a.ID, "+1234567002", money.Amount(1000), "by phone number")
	require.NoError(t, err)

	balanceB, err := l.Balance(b.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(2000), balanceB)
}

func TestDepositMoney(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(0))

	txn, err := l.DepositMoney(a.ID, money.Amount(50000), "bank")
	require.NoError(t, err)
	require.Equal(t, store.TransactionKindDeposit, txn.Kind)
	require.Equal(t, "Deposit via bank", txn.Description)
	require.Equal(t, "bank", txn.Method.String)

	balance, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(50000), balance)

	_, err = l.DepositMoney("no-such-account", money.Amount(100), "bank")
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = l.DepositMoney(a.ID, money.Amount(0), "bank")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWithdrawMoney(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))

	_, err := l.WithdrawMoney(a.ID, money.Amount(15000), "atm")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// the failed attempt left no trace
	balance, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(10000), balance)
	require.Empty(t, collectHistory(t, l, a.ID))

	txn, err := l.WithdrawMoney(a.ID, money.Amount(5000), "atm")
	require.NoError(t, err)
	require.Equal(t, store.TransactionKindWithdraw, txn.Kind)
	require.Equal(t, "Withdrawal via atm", txn.Description)

	balance, err = l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(5000), balance)
}

func TestBalance_UnknownAccountIsZero(t *testing.T) {
	l, _ := newTestLedger(t)

	balance, err := l.Balance("no-such-account")
	require.NoError(t, err)
	require.Equal(t, money.Amount(0), balance)
}

func TestTransactionHistory_OrderAndRestartability(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(0))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(0))

	_, err := l.DepositMoney(a.ID, money.Amount(50000), "bank")
	require.NoError(t, err)

	_, err = l.SendMoney(a.ID, b.ID, money.Amount(10000), "first")
	require.NoError(t, err)

	_, err = l.WithdrawMoney(a.ID, money.Amount(5000), "atm")
	require.NoError(t, err)

	history := collectHistory(t, l, a.ID)
	require.Len(t, history, 3)

	// most recent first
	require.Equal(t, store.TransactionKindWithdraw, history[0].Kind)
	require.Equal(t, store.TransactionKindSend, history[1].Kind)
	require.Equal(t, store.TransactionKindDeposit, history[2].Kind)

	// iterating again with no writes in between must yield the same records
	again := collectHistory(t, l, a.ID)
	require.Equal(t, history, again)

	// a partial iteration is fine too
	for range l.TransactionHistory(a.ID) {
		break
	}
}

func TestRegister(t *testing.T) {
	l, _ := newTestLedger(t)

	account, err := l.Register(&models.Account{
		FirstName:   "Alice",
		LastName:    "Tester",
		Email:       "alice@example.com",
		PhoneNumber: "+1234567001",
		Balance:     money.Amount(99999), // must be ignored
	})
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.Equal(t, money.Amount(0), account.Balance)

	require.Len(t, account.WalletID, 16)
	require.Equal(t, "WAL", account.WalletID[:3])

	_, err = l.Register(&models.Account{
		FirstName:   "Alice",
		LastName:    "Again",
		Email:       "alice@example.com",
		PhoneNumber: "+1234567003",
	})
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestSendMoney_ConcurrentCrossedTransfers(t *testing.T) {
	l, st := newTestLedger(t)

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(100000))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(100000))

	const rounds = 25

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := l.SendMoney(a.ID, b.ID, money.Amount(100), "a to b")
			require.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := l.SendMoney(b.ID, a.ID, money.Amount(100), "b to a")
			require.NoError(t, err)
		}
	}()

	wg.Wait()

	balanceA, err := l.Balance(a.ID)
	require.NoError(t, err)
	balanceB, err := l.Balance(b.ID)
	require.NoError(t, err)

	// equal flows in both directions cancel out, and money is conserved
	require.Equal(t, money.Amount(100000), balanceA)
	require.Equal(t, money.Amount(100000), balanceB)
	require.Equal(t, money.Amount(200000), balanceA+balanceB)

	require.Len(t, collectHistory(t, l, a.ID), rounds*4)
}

// brokenLogStore delegates to a real store but fails every transaction
// append, so tests can observe what a failure between the balance effect
// and the log leaves behind.
type brokenLogStore struct {
	store.Store
	insertErr error
}

func (s *brokenLogStore) Transaction() store.TransactionRepository {
	return &brokenLogRepo{TransactionRepository: s.Store.Transaction(), insertErr: s.insertErr}
}

func (s *brokenLogStore) Atomic(fn func(store.Store) error) error {
	return fn(s)
}

type brokenLogRepo struct {
	store.TransactionRepository
	insertErr error
}

func (r *brokenLogRepo) Insert(*models.Transaction) (string, error) {
	return "", r.insertErr
}

func TestSendMoney_FailedAppendRestoresBalances(t *testing.T) {
	st := memory.New()

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))
	b := seedAccount(t, st, "Ben", "ben@example.com", "+1234567002", "WALBBB000002", money.Amount(5000))

	l := New(&brokenLogStore{Store: st, insertErr: errors.New("log unavailable")})

	_, err := l.SendMoney(a.ID, b.ID, money.Amount(5000), "Rent")
	require.Error(t, err)

	balanceA, err := l.Balance(a.ID)
	require.NoError(t, err)
	balanceB, err := l.Balance(b.ID)
	require.NoError(t, err)

	require.Equal(t, money.Amount(10000), balanceA)
	require.Equal(t, money.Amount(5000), balanceB)

	transactions, err := st.Transaction().GetAll()
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestDepositMoney_FailedAppendRestoresBalance(t *testing.T) {
	st := memory.New()

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))

	l := New(&brokenLogStore{Store: st, insertErr: errors.New("log unavailable")})

	_, err := l.DepositMoney(a.ID, money.Amount(2500), "bank")
	require.Error(t, err)

	balance, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(10000), balance)
}

func TestWithdrawMoney_FailedAppendRestoresBalance(t *testing.T) {
	st := memory.New()

	a := seedAccount(t, st, "Alice", "alice@example.com", "+1234567001", "WALAAA000001", money.Amount(10000))

	l := New(&brokenLogStore{Store: st, insertErr: errors.New("log unavailable")})

	_, err := l.WithdrawMoney(a.ID, money.Amount(2500), "atm")
	require.Error(t, err)

	balance, err := l.Balance(a.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(10000), balance)
}

// staleReadStore reports every email as unregistered, standing in for the
// window where a second registration reads before the first one has
// inserted.
type staleReadStore struct {
	store.Store
}

func (s *staleReadStore) Account() store.AccountRepository {
	return &staleReadAccountRepo{AccountRepository: s.Store.Account()}
}

type staleReadAccountRepo struct {
	store.AccountRepository
}

func (r *staleReadAccountRepo) GetByEmail(string) (*models.Account, bool, error) {
	return nil, false, nil
}

func TestRegister_DuplicateEmailPastReadCheck(t *testing.T) {
	st := memory.New()
	l := New(&staleReadStore{Store: st})

	_, err := l.Register(&models.Account{
		FirstName:   "Ada",
		LastName:    "Tester",
		Email:       "ada@example.com",
		PhoneNumber: "+1234567001",
	})
	require.NoError(t, err)

	_, err = l.Register(&models.Account{
		FirstName:   "Ada",
		LastName:    "Tester",
		Email:       "ada@example.com",
		PhoneNumber: "+1234567002",
	})
	require.ErrorIs(t, err, ErrAccountExists)

	accounts, err := st.Account().GetAll()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	l, st := newTestLedger(t)

	const attempts = 8

	start := make(chan struct{})
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, errs[i] = l.Register(&models.Account{
				FirstName:   "Grace",
				LastName:    "Tester",
				Email:       "grace@example.com",
				PhoneNumber: fmt.Sprintf("+19990000%03d", i),
			})
		}()
	}
	close(start)
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, ErrAccountExists)
	}
	require.Equal(t, 1, created)

	accounts, err := st.Account().GetAll()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}
