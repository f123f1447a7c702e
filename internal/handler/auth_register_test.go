package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunawallet/luna/internal/mocks"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/store/memory"
	"github.com/stretchr/testify/require"
)

func TestHandleAuthRegister_EmailTakenDuringRegistration(t *testing.T) {
	// the handler's own read check misses, so the conflict surfaces from
	// the account creation itself; it must come back as a validation
	// failure, not a server error
	st := memory.New()
	_, err := st.Account().Insert(&models.Account{
		FirstName:   "Taken",
		LastName:    "Tester",
		Email:       "taken@example.com",
		PhoneNumber: "+15550009999",
		WalletID:    "WALTAKEN0001",
	})
	require.NoError(t, err)

	mockAccountRepo := new(mocks.MockAccountRepo)
	mockAccountRepo.On("GetByEmail", "taken@example.com").Return((*models.Account)(nil), false, nil)

	authHandler := newTestAuthHandlerWithStore(mockAccountRepo, st)

	requestBody, _ := json.Marshal(map[string]string{
		"email":        "taken@example.com",
		"password":     "Str0ng&Secret1",
		"first_name":   "Joanna",
		"last_name":    "Tester",
		"phone_number": "+15550001111",
	})

	req, err := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	authHandler.HandleAuthRegister(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	accounts, err := st.Account().GetAll()
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	mockAccountRepo.AssertExpectations(t)
}
