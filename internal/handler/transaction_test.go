package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	appcontext "github.com/lunawallet/luna/internal/context"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/ledger"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/store/memory"
	"github.com/stretchr/testify/require"
)

func newTestTransactionHandler(st store.Store) *transactionHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", nil, logger)

	return NewTransactionHandler(ledger.New(st), errorHandler, nil)
}

func seedHandlerAccount(t *testing.T, st store.Store, email, walletID string, balance money.Amount) *models.Account {
	t.Helper()

	account := &models.Account{
		FirstName:   "Test",
		LastName:    "Account",
		Email:       email,
		PhoneNumber: "+1" + walletID[3:],
		WalletID:    walletID,
		Balance:     balance,
		Status:      store.AccountActiveStatus,
	}

	id, err := st.Account().Insert(account)
	require.NoError(t, err)
	account.ID = id

	return account
}

func authenticatedRequest(method, target string, body []byte, account *models.Account) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return appcontext.ContextSetAuthenticatedAccount(req, account)
}

func TestHandleTransferMoney(t *testing.T) {
	st := memory.New()
	sender := seedHandlerAccount(t, st, "sender@example.com", "WAL111111111", money.Amount(125050))
	recipient := seedHandlerAccount(t, st, "recipient@example.com", "WAL222222222", money.Amount(89075))

	transactionHandler := newTestTransactionHandler(st)

	requestBody, _ := json.Marshal(map[string]any{
		"recipient":   recipient.WalletID,
		"amount":      "150.00",
		"description": "Payment for dinner",
	})

	rr := httptest.NewRecorder()
	transactionHandler.HandleTransferMoney(rr, authenticatedRequest("POST", "/transactions/transfer", requestBody, sender))

	require.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Data TransactionResponseData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	require.Equal(t, "send", response.Data.Kind)
	require.Equal(t, "150.00", response.Data.Amount)
	require.Equal(t, recipient.ID, response.Data.RecipientID)
	require.Equal(t, "completed", response.Data.Status)

	senderAfter, _, err := st.Account().GetOne(sender.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(110050), senderAfter.Balance)

	recipientAfter, _, err := st.Account().GetOne(recipient.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(104075), recipientAfter.Balance)
}

func TestHandleTransferMoney_InsufficientBalance(t *testing.T) {
	st := memory.New()
	sender := seedHandlerAccount(t, st, "sender@example.com", "WAL111111111", money.Amount(10000))
	recipient := seedHandlerAccount(t, st, "recipient@example.com", "WAL222222222", money.Amount(0))

	transactionHandler := newTestTransactionHandler(st)

	requestBody, _ := json.Marshal(map[string]any{
		"recipient":   recipient.WalletID,
		"amount":      "150.00",
		"description": "too much",
	})

	rr := httptest.NewRecorder()
	transactionHandler.HandleTransferMoney(rr, authenticatedRequest("POST", "/transactions/transfer", requestBody, sender))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	senderAfter, _, err := st.Account().GetOne(sender.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(10000), senderAfter.Balance)
}

func TestHandleTransferMoney_RejectsSubCentAmount(t *testing.T) {
	st := memory.New()
	sender := seedHandlerAccount(t, st, "sender@example.com", "WAL111111111", money.Amount(10000))
	seedHandlerAccount(t, st, "recipient@example.com", "WAL222222222", money.Amount(0))

	transactionHandler := newTestTransactionHandler(st)

	requestBody, _ := json.Marshal(map[string]any{
		"recipient":   "WAL222222222",
		"amount":      "0.001",
		"description": "dust",
	})

	rr := httptest.NewRecorder()
	transactionHandler.HandleTransferMoney(rr, authenticatedRequest("POST", "/transactions/transfer", requestBody, sender))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleDepositMoney(t *testing.T) {
	st := memory.New()
	account := seedHandlerAccount(t, st, "account@example.com", "WAL111111111", money.Amount(0))

	transactionHandler := newTestTransactionHandler(st)

	requestBody, _ := json.Marshal(map[string]any{
		"amount": "500.00",
		"method": "bank",
	})

	rr := httptest.NewRecorder()
	transactionHandler.HandleDepositMoney(rr, authenticatedRequest("POST", "/transactions/deposit", requestBody, account))

	require.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Data TransactionResponseData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Equal(t, "deposit", response.Data.Kind)
	require.Equal(t, "Deposit via bank", response.Data.Description)

	after, _, err := st.Account().GetOne(account.ID)
	require.NoError(t, err)
	require.Equal(t, money.Amount(50000), after.Balance)
}

func TestHandleTransactionHistory(t *testing.T) {
	st := memory.New()
	account := seedHandlerAccount(t, st, "account@example.com", "WAL111111111", money.Amount(0))

	transactionHandler := newTestTransactionHandler(st)

	for _, amount := range []string{"10.00", "20.00", "30.00"} {
		requestBody, _ := json.Marshal(map[string]any{
			"amount": amount,
			"method": "bank",
		})
		rr := httptest.NewRecorder()
		transactionHandler.HandleDepositMoney(rr, authenticatedRequest("POST", "/transactions/deposit", requestBody, account))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	transactionHandler.HandleTransactionHistory(rr, authenticatedRequest("GET", "/transactions?limit=2", nil, account))

	require.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Data []TransactionResponseData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	// pagination caps the page, most recent first
	require.Len(t, response.Data, 2)
	require.Equal(t, "30.00", response.Data[0].Amount)
	require.Equal(t, "20.00", response.Data[1].Amount)
}
