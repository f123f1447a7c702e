package handler

import (
	"net/http"
	"time"

	"github.com/lunawallet/luna/internal/context"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/ledger"
	"github.com/lunawallet/luna/internal/response"
)

type WalletResponseData struct {
	ID         string    `json:"id"`
	WalletID   string    `json:"wallet_id"`
	WalletName string    `json:"wallet_name"`
	Balance    string    `json:"balance"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type walletHandler struct {
	ledger     *ledger.Ledger
	errHandler *errHandler.ErrorHandler
}

func NewWalletHandler(ledger *ledger.Ledger, errHandler *errHandler.ErrorHandler) *walletHandler {
	return &walletHandler{
		ledger:     ledger,
		errHandler: errHandler,
	}
}

func (h *walletHandler) HandleWalletBalance(w http.ResponseWriter, r *http.Request) {
	account := context.ContextGetAuthenticatedAccount(r)

	balance, err := h.ledger.Balance(account.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Balance fetched successfully"

	data := map[string]any{
		"balance": balance.String(),
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *walletHandler) HandleWalletDetails(w http.ResponseWriter, r *http.Request) {
	account := context.ContextGetAuthenticatedAccount(r)

	balance, err := h.ledger.Balance(account.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Wallet details fetched successfully"

	data := &WalletResponseData{
		ID:         account.ID,
		WalletID:   account.WalletID,
		WalletName: WalletName,
		Balance:    balance.String(),
		Status:     account.Status,
		CreatedAt:  account.CreatedAt,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
