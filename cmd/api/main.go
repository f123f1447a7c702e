package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/lunawallet/luna/internal/app"
	"github.com/lunawallet/luna/internal/version"
	"github.com/lunawallet/luna/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.Store.Close()
	defer application.Cache.Close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	alertWorker := worker.New(&worker.Worker{
		KafkaStream: application.Kafka,
		Store:       application.Store,
		Ctx:         workerCtx,
		Helper:      application.Helper,
		Mailer:      application.Mailer,
	})
	go alertWorker.TransactionAlertWorker()

	return application.ServeHTTP()
}
