package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lunawallet/luna/internal/context"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/ledger"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/request"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/stream"
	"github.com/lunawallet/luna/internal/validator"

	"github.com/shopspring/decimal"
)

type transactionHandler struct {
	ledger     *ledger.Ledger
	errHandler *errHandler.ErrorHandler
	kafka      *stream.KafkaStream
}

func NewTransactionHandler(ledger *ledger.Ledger, errHandler *errHandler.ErrorHandler, kafka *stream.KafkaStream) *transactionHandler {
	return &transactionHandler{
		ledger:     ledger,
		errHandler: errHandler,
		kafka:      kafka,
	}
}

type TransactionResponseData struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	RecipientID string `json:"recipient_id,omitempty"`
	SenderID    string `json:"sender_id,omitempty"`
	Method      string `json:"method,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func newTransactionResponseData(txn *models.Transaction) *TransactionResponseData {
	return &TransactionResponseData{
		ID:          txn.ID,
		AccountID:   txn.AccountID,
		Kind:        txn.Kind,
		Amount:      txn.Amount.String(),
		Description: txn.Description,
		RecipientID: txn.RecipientID.String,
		SenderID:    txn.SenderID.String,
		Method:      txn.Method.String,
		Status:      txn.Status,
		CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
	}
}

func (h *transactionHandler) HandleTransferMoney(w http.ResponseWriter, r *http.Request) {
	// A wallet to wallet transfer:
	// Step 1: validate the input
	// Step 2: let the ledger run the debit-credit-append sequence atomically
	// Step 3: publish the completed transaction so the alert worker can notify both sides

	type TransferFundsInput struct {
		Recipient   string              `json:"recipient"`
		Amount      decimal.Decimal     `json:"amount"`
		Description string              `json:"description"`
		Validator   validator.Validator `json:"-"`
	}

	var input TransferFundsInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Recipient), "Recipient is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		input.Validator.AddError(err.Error())
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	sender := context.ContextGetAuthenticatedAccount(r)

	transaction, err := h.ledger.SendMoney(sender.ID, input.Recipient, amount, input.Description)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	transferRes := newTransactionResponseData(transaction)

	h.publishCompleted(transferRes)

	message := "Transfer completed successfully"
	err = response.JSONOkResponse(w, transferRes, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *transactionHandler) HandleDepositMoney(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Method    string              `json:"method"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.IsPositive(), "Amount is required")
	input.Validator.Check(validator.NotBlank(input.Method), "Method is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		input.Validator.AddError(err.Error())
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	account := context.ContextGetAuthenticatedAccount(r)

	transaction, err := h.ledger.DepositMoney(account.ID, amount, input.Method)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	depositRes := newTransactionResponseData(transaction)

	h.publishCompleted(depositRes)

	message := "Deposit completed successfully"
	err = response.JSONOkResponse(w, depositRes, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *transactionHandler) HandleWithdrawMoney(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Method    string              `json:"method"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.IsPositive(), "Amount is required")
	input.Validator.Check(validator.NotBlank(input.Method), "Method is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		input.Validator.AddError(err.Error())
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	account := context.ContextGetAuthenticatedAccount(r)

	transaction, err := h.ledger.WithdrawMoney(account.ID, amount, input.Method)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	withdrawRes := newTransactionResponseData(transaction)

	h.publishCompleted(withdrawRes)

	message := "Withdrawal completed successfully"
	err = response.JSONOkResponse(w, withdrawRes, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *transactionHandler) HandleTransactionHistory(w http.ResponseWriter, r *http.Request) {
	account := context.ContextGetAuthenticatedAccount(r)

	queryValues := retrieveUrlQueryValues(r)

	data := []*TransactionResponseData{}
	skipped := 0

	for txn, err := range h.ledger.TransactionHistory(account.ID) {
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		if skipped < queryValues.Offset {
			skipped++
			continue
		}

		data = append(data, newTransactionResponseData(&txn))

		if len(data) >= queryValues.Limit {
			break
		}
	}

	message := "Transactions fetched successfully"
	err := response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// respondLedgerError maps the ledger's typed errors to 422 responses;
// anything unrecognised is a genuine server error.
func (h *transactionHandler) respondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSenderNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrRecipientNotFound),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrSameAccount):
		response.JSONErrorResponse(w, nil, err.Error(), http.StatusUnprocessableEntity, nil)
	default:
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *transactionHandler) publishCompleted(data *TransactionResponseData) {
	if h.kafka == nil {
		return
	}

	// the response data and the event share their field layout on purpose;
	// both are the wire form of a committed transaction
	event := stream.TransactionCompletedEvent(*data)

	jsonMessage, err := json.Marshal(event)
	if err != nil {
		return
	}

	// Produce the event so the alert worker can notify the involved accounts
	go h.kafka.ProduceMessage(stream.TransactionCompletedTopic, string(jsonMessage))
}
