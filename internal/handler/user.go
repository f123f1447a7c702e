package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lunawallet/luna/internal/context"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/file"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/store"
)

type AccountResponseData struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	WalletID    string    `json:"wallet_id"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type userHandler struct {
	accountRepo  store.AccountRepository
	errHandler   *errHandler.ErrorHandler
	fileUploader *file.FileUploader
}

func NewUserHandler(accountRepo store.AccountRepository, errHandler *errHandler.ErrorHandler, fileUploader *file.FileUploader) *userHandler {
	return &userHandler{
		accountRepo:  accountRepo,
		errHandler:   errHandler,
		fileUploader: fileUploader,
	}
}

func (h *userHandler) HandleUserProfile(w http.ResponseWriter, r *http.Request) {
	account := context.ContextGetAuthenticatedAccount(r)

	data := &AccountResponseData{
		ID:          account.ID,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Email:       account.Email,
		PhoneNumber: account.PhoneNumber,
		WalletID:    account.WalletID,
		Image:       account.Image.String,
		Status:      account.Status,
		CreatedAt:   account.CreatedAt,
	}

	message := "Profile fetched successfully"
	err := response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleChangeProfilePicture(w http.ResponseWriter, r *http.Request) {
	account := context.ContextGetAuthenticatedAccount(r)

	err := r.ParseMultipartForm(10 << 20) // 10 MB
	if err != nil {
		h.errHandler.BadRequest(w, r, errors.New("invalid request data"))
		return
	}

	upload, header, err := r.FormFile("file")
	if err != nil {
		h.errHandler.BadRequest(w, r, errors.New("error retrieving the file"))
		return
	}
	defer upload.Close()

	fileExtension := filepath.Ext(header.Filename)

	// Save the file temporarily to the server
	tempFile, err := os.CreateTemp("", fmt.Sprintf("upload-*%s", fileExtension))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = tempFile.ReadFrom(upload)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	// upload to cloud storage
	fileURL, err := h.fileUploader.UploadFile(tempFile.Name())
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err := h.accountRepo.ChangeProfilePicture(account.ID, fileURL); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Profile picture updated successfully"
	data := map[string]any{
		"image": fileURL,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
