package handler

import (
	"net/http"
	"time"

	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/store"
)

// adminHandler backs the operator overview: every account and the full
// transaction log. There is no role model here, the routes are expected
// to be fenced off at the network layer.
type adminHandler struct {
	accountRepo     store.AccountRepository
	transactionRepo store.TransactionRepository
	errHandler      *errHandler.ErrorHandler
}

func NewAdminHandler(accountRepo store.AccountRepository, transactionRepo store.TransactionRepository, errHandler *errHandler.ErrorHandler) *adminHandler {
	return &adminHandler{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		errHandler:      errHandler,
	}
}

type AccountMiniData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	WalletID  string    `json:"wallet_id"`
	Balance   string    `json:"balance"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *adminHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountRepo.GetAll()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]*AccountMiniData, len(accounts))
	for i, account := range accounts {
		data[i] = &AccountMiniData{
			ID:        account.ID,
			Name:      account.FirstName + " " + account.LastName,
			Email:     account.Email,
			WalletID:  account.WalletID,
			Balance:   account.Balance.String(),
			Status:    account.Status,
			CreatedAt: account.CreatedAt,
		}
	}

	message := "Accounts fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *adminHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionRepo.GetAll()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]*TransactionResponseData, len(transactions))
	for i := range transactions {
		data[i] = newTransactionResponseData(&transactions[i])
	}

	message := "Transactions fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
