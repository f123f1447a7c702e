// Every committed transaction ends up on the transaction.completed topic.
// The alert worker picks them up and mails the involved account holders:
// a debit alert for the money leaving a wallet and a credit alert for the
// money arriving. The ledger has already committed by the time an event
// lands here, so a lost email never affects balances.
package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/lunawallet/luna/internal/money"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/stream"
)

func (wk *Worker) TransactionAlertWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: transactionAlertGroupID,
		Topic:   stream.TransactionCompletedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close() // Ensure cleanup

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("TransactionAlertWorker received cancellation signal, shutting down...")
			return
		default:
			// Poll for Kafka events
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				message := e.Value
				var transaction *stream.TransactionCompletedEvent
				err := json.Unmarshal(message, &transaction)
				if err != nil || transaction == nil {
					log.Printf("Error decoding transaction event: %v", err)
					continue
				}

				wk.sendTransactionAlerts(transaction)
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

func (wk *Worker) sendTransactionAlerts(transaction *stream.TransactionCompletedEvent) bool {
	owner, found, err := wk.Store.Account().GetOne(transaction.AccountID)
	if err != nil || !found {
		log.Printf("Error finding account for transaction alert: %v", err)
		return false
	}

	switch transaction.Kind {
	case store.TransactionKindSend:
		recipient, found, err := wk.Store.Account().GetOne(transaction.RecipientID)
		if err != nil || !found {
			log.Printf("Error finding recipient's account for credit alert: %v", err)
			return false
		}

		wk.sendDebitAlert(owner.Email, map[string]any{
			"Name":          owner.FirstName + " " + owner.LastName,
			"RecipientName": recipient.FirstName + " " + recipient.LastName,
		}, transaction, owner.Balance)

		wk.sendCreditAlert(recipient.Email, map[string]any{
			"Name":       recipient.FirstName + " " + recipient.LastName,
			"SenderName": owner.FirstName + " " + owner.LastName,
		}, transaction, recipient.Balance)

	case store.TransactionKindDeposit:
		wk.sendCreditAlert(owner.Email, map[string]any{
			"Name":       owner.FirstName + " " + owner.LastName,
			"SenderName": transaction.Method,
		}, transaction, owner.Balance)

	case store.TransactionKindWithdraw:
		wk.sendDebitAlert(owner.Email, map[string]any{
			"Name":          owner.FirstName + " " + owner.LastName,
			"RecipientName": transaction.Method,
		}, transaction, owner.Balance)
	}

	return true
}

func (wk *Worker) sendDebitAlert(email string, fields map[string]any, transaction *stream.TransactionCompletedEvent, newBalance money.Amount) {
	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		for key, value := range fields {
			emailData[key] = value
		}
		emailData["Amount"] = transaction.Amount
		emailData["TransactionID"] = transaction.ID
		emailData["NewBalance"] = newBalance

		err := wk.Mailer.Send(email, emailData, "debit-alert.tmpl")
		if err != nil {
			log.Printf("Error sending debit email alert: %v", err)
			return err
		}

		return nil
	})
}

func (wk *Worker) sendCreditAlert(email string, fields map[string]any, transaction *stream.TransactionCompletedEvent, newBalance money.Amount) {
	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		for key, value := range fields {
			emailData[key] = value
		}
		emailData["Amount"] = transaction.Amount
		emailData["TransactionID"] = transaction.ID
		emailData["NewBalance"] = newBalance

		err := wk.Mailer.Send(email, emailData, "credit-alert.tmpl")
		if err != nil {
			log.Printf("Error sending credit email alert: %v", err)
			return err
		}

		return nil
	})
}
