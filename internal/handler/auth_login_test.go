package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lunawallet/luna/internal/cache"
	"github.com/lunawallet/luna/internal/config"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/helper"
	"github.com/lunawallet/luna/internal/ledger"
	"github.com/lunawallet/luna/internal/mocks"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/store/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(accountRepo store.AccountRepository) *authHandler {
	return newTestAuthHandlerWithStore(accountRepo, memory.New())
}

func newTestAuthHandlerWithStore(accountRepo store.AccountRepository, st store.Store) *authHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", nil, logger)

	var wg sync.WaitGroup
	baseURL := "http://localhost"
	helperRepo := helper.New(&baseURL, &wg, errorHandler)

	cfg := &config.Config{
		BaseURL: "http://localhost",
	}
	cfg.Jwt.SecretKey = "test_secret"
	cfg.RedisServer = "localhost:6379"

	mockMailer := new(mocks.MockMailer)
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return NewAuthHandler(
		ledger.New(st),
		accountRepo,
		errorHandler,
		helperRepo,
		mockMailer,
		cache.New(cfg.RedisServer, 0),
		cfg,
	)
}

func TestHandleAuthLogin_ValidCredentials(t *testing.T) {
	// Arrange
	mockAccountRepo := new(mocks.MockAccountRepo)

	testAccount := &models.Account{
		ID:             "123",
		Email:          "test@example.com",
		WalletID:       "WAL123456789",
		HashedPassword: "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG",
		Status:         store.AccountActiveStatus,
	}

	mockAccountRepo.On("GetByEmail", "test@example.com").Return(testAccount, true, nil)

	authHandler := newTestAuthHandler(mockAccountRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "correctpassword",
	})

	req, err := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	// Act
	authHandler.HandleAuthLogin(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	require.Contains(t, response, "data")

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")

	require.Contains(t, data, "auth_token")
	require.Contains(t, data, "token_expiry")
	require.NotEmpty(t, data["auth_token"])

	mockAccountRepo.AssertExpectations(t)
}

func TestHandleAuthLogin_UnknownEmail(t *testing.T) {
	mockAccountRepo := new(mocks.MockAccountRepo)
	mockAccountRepo.On("GetByEmail", "nobody@example.com").Return((*models.Account)(nil), false, nil)

	authHandler := newTestAuthHandler(mockAccountRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	req, err := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockAccountRepo.AssertExpectations(t)
}

func TestHandleAuthLogin_LockedAccount(t *testing.T) {
	mockAccountRepo := new(mocks.MockAccountRepo)

	testAccount := &models.Account{
		ID:             "123",
		Email:          "locked@example.com",
		HashedPassword: "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG",
		Status:         store.AccountLockedStatus,
	}

	mockAccountRepo.On("GetByEmail", "locked@example.com").Return(testAccount, true, nil)

	authHandler := newTestAuthHandler(mockAccountRepo)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "locked@example.com",
		"password": "correctpassword",
	})

	req, err := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	mockAccountRepo.AssertExpectations(t)
}
