package worker

import (
	"context"

	"github.com/lunawallet/luna/internal/helper"
	"github.com/lunawallet/luna/internal/smtp"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	Store       store.Store
	Ctx         context.Context
	Helper      *helper.HelperRepository
	Mailer      smtp.MailerInterface
}

// transactionAlertGroupID is used by workers that send out notifications
// once a transaction has been committed to the ledger.
const transactionAlertGroupID = "transaction-alert-group"

// Our workers typically need access to the store and the kafka event stream
// worker-specific dependency can be passed as argument to the worker
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		Store:       wk.Store,
		Ctx:         wk.Ctx,
		Helper:      wk.Helper,
		Mailer:      wk.Mailer,
	}
}
