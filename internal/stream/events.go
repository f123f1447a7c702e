package stream

// TransactionCompletedTopic carries every transaction committed by the
// ledger: transfers, deposits and withdrawals. Consumers must not assume a
// particular kind.
const TransactionCompletedTopic = "transaction.completed"

// TransactionCompletedEvent is the payload published on
// TransactionCompletedTopic. Amounts are decimal strings, timestamps RFC3339.
type TransactionCompletedEvent struct {
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
