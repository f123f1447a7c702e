package mocks

import (
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/money"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepo implements store.AccountRepository but only mocks the needed methods.
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Insert(account *models.Account) (string, error) {
	return "", nil
}

func (m *MockAccountRepo) GetOne(id string) (*models.Account, bool, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) GetByEmail(email string) (*models.Account, bool, error) {
	args := m.Called(email)
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) GetByWalletID(walletID string) (*models.Account, bool, error) {
	args := m.Called(walletID)
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) GetByPhoneNumber(phoneNumber string) (*models.Account, bool, error) {
	return nil, false, nil
}

func (m *MockAccountRepo) GetAll() ([]models.Account, error) {
	return nil, nil
}

func (m *MockAccountRepo) Credit(id string, amount money.Amount) (bool, error) {
	return true, nil
}

func (m *MockAccountRepo) Debit(id string, amount money.Amount) (bool, error) {
	return true, nil
}

func (m *MockAccountRepo) Verify(id string) error {
	return nil
}

func (m *MockAccountRepo) ChangeProfilePicture(id string, image string) error {
	return nil
}

func (m *MockAccountRepo) Lock(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
