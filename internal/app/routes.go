package app

import (
	"net/http"

	"github.com/lunawallet/luna/internal/handler"
	"github.com/lunawallet/luna/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.errorHandler, app.Logger, app.Store.Account(), app.Cache, &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)
	authHandler := handler.NewAuthHandler(app.Ledger, app.Store.Account(), app.errorHandler, app.Helper, app.Mailer, app.Cache, &app.Config)
	walletHandler := handler.NewWalletHandler(app.Ledger, app.errorHandler)
	transactionHandler := handler.NewTransactionHandler(app.Ledger, app.errorHandler, app.Kafka)
	promotionHandler := handler.NewPromotionHandler(app.Store.Promotion(), app.errorHandler)
	userHandler := handler.NewUserHandler(app.Store.Account(), app.errorHandler, app.FileUploader)
	adminHandler := handler.NewAdminHandler(app.Store.Account(), app.Store.Transaction(), app.errorHandler)

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleAuthLogin)
	mux.HandleFunc("POST /auth/wallet-login", authHandler.HandleWalletLogin)
	mux.HandleFunc("POST /auth/otp/verify", authHandler.HandleVerifyOTP)

	protect := func(fn http.HandlerFunc) http.Handler {
		return mid.RequireAuthenticatedAccount(fn)
	}

	mux.Handle("POST /auth/logout", protect(authHandler.HandleAuthLogout))

	mux.Handle("GET /wallets/balance", protect(walletHandler.HandleWalletBalance))
	mux.Handle("GET /wallets/details", protect(walletHandler.HandleWalletDetails))

	mux.Handle("POST /transactions/transfer", protect(transactionHandler.HandleTransferMoney))
	mux.Handle("POST /transactions/deposit", protect(transactionHandler.HandleDepositMoney))
	mux.Handle("POST /transactions/withdraw", protect(transactionHandler.HandleWithdrawMoney))
	mux.Handle("GET /transactions", protect(transactionHandler.HandleTransactionHistory))

	mux.Handle("GET /promotions", protect(promotionHandler.HandleActivePromotions))

	mux.Handle("GET /users/me", protect(userHandler.HandleUserProfile))
	mux.Handle("PATCH /users/me/profile-picture", protect(userHandler.HandleChangeProfilePicture))

	mux.Handle("GET /admin/accounts", protect(adminHandler.HandleListAccounts))
	mux.Handle("GET /admin/transactions", protect(adminHandler.HandleListTransactions))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux)))
}
