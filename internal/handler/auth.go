package handler

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/lunawallet/luna/internal/cache"
	"github.com/lunawallet/luna/internal/config"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/helper"
	"github.com/lunawallet/luna/internal/ledger"
	"github.com/lunawallet/luna/internal/models"
	"github.com/lunawallet/luna/internal/request"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/smtp"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/google/uuid"
	"github.com/pascaldekloe/jwt"
)

const (
	otpTTL      = 10 * time.Minute
	tokenTTL    = 24 * time.Hour
	failedLogin = "failed-login:"
)

type authHandler struct {
	ledger      *ledger.Ledger
	accountRepo store.AccountRepository
	errHandler  *errHandler.ErrorHandler
	helper      *helper.HelperRepository
	mailer      smtp.MailerInterface
	cache       *cache.Cache
	config      *config.Config
}

func NewAuthHandler(ledger *ledger.Ledger, accountRepo store.AccountRepository, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, mailer smtp.MailerInterface, cache *cache.Cache, config *config.Config) *authHandler {
	return &authHandler{
		ledger:      ledger,
		accountRepo: accountRepo,
		errHandler:  errHandler,
		helper:      helper,
		mailer:      mailer,
		cache:       cache,
		config:      config,
	}
}

// New account registration involves:
// input validation and checking that the unique fields (email, phone) are not taken,
// creating the zero-balance account with a fresh wallet id through the ledger,
// then mailing out a welcome email and a one-time verification code.
func (h *authHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email       string              `json:"email"`
		Password    string              `json:"password"`
		FirstName   string              `json:"first_name"`
		LastName    string              `json:"last_name"`
		PhoneNumber string              `json:"phone_number"`
		Passcode    string              `json:"passcode"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	// we need to validate the password to make sure it meets the minimum requirements
	// the Validate function returns a slice of errors if the password does not meet the requirements
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	_, found, err := h.accountRepo.GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	// we want to make sure no two accounts have the same email
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(len(input.FirstName) >= 3, "First name is too short")

	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")
	input.Validator.Check(len(input.LastName) >= 3, "Last name is too short")

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")

	// we want to make sure no two accounts have the same phone number
	_, found, err = h.accountRepo.GetByPhoneNumber(input.PhoneNumber)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "Phone number has been registered")

	// passcode is optional, but when given it must be a 6-digit code
	if input.Passcode != "" {
		input.Validator.Check(len(input.Passcode) == 6, "Passcode must be 6 digits")
		input.Validator.Check(strings.Trim(input.Passcode, "0123456789") == "", "Passcode must contain only digits")
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	newAccount := &models.Account{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		HashedPassword: hashedPassword,
	}

	if input.Passcode != "" {
		hashedPasscode, err := gopass.Hash(input.Passcode)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
		newAccount.HashedPasscode = sql.NullString{String: hashedPasscode, Valid: true}
	}

	account, err := h.ledger.Register(newAccount)
	if err != nil {
		// another registration can claim the email between the check above
		// and the insert; that is a validation failure, not a server fault
		if errors.Is(err, ledger.ErrAccountExists) {
			input.Validator.AddError("Email is already in use")
			h.errHandler.FailedValidation(w, r, input.Validator.Errors)
			return
		}
		h.errHandler.ServerError(w, r, err)
		return
	}

	otp, err := generateOTP()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err := h.cache.Set("otp:"+account.Email, otp, otpTTL); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.helper.BackgroundTask(r, func() error {
		emailData := h.helper.NewEmailData()
		emailData["Name"] = account.FirstName + " " + account.LastName
		emailData["WalletID"] = account.WalletID
		emailData["WalletName"] = WalletName
		emailData["Code"] = otp

		err = h.mailer.Send(account.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}

		return nil
	})

	message := "Account created successfully. Check your email for a verification code"

	data := map[string]any{
		"id":        account.ID,
		"wallet_id": account.WalletID,
	}

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *authHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	account, found, err := h.accountRepo.GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, account.HashedPassword)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
		input.Validator.Check(passwordMatches, "Incorrect email/password")

		if !passwordMatches {
			// lock the account after 3 consecutive failed attempts
			count, err := h.cache.Increment(failedLogin+account.ID, time.Hour)
			if err != nil {
				h.errHandler.ServerError(w, r, err)
				return
			}

			if count >= 3 {
				h.helper.BackgroundTask(r, func() error {
					return h.accountRepo.Lock(account.ID)
				})

				h.errHandler.FailedValidation(w, r, []string{"Account has been locked. Please contact support"})
				return
			}
		}
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if account.Status == store.AccountLockedStatus {
		message := "Account has been locked. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	if account.Status == store.AccountActivePending {
		message := "Please verify your account with the code we sent to your email"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	// clear the failed-attempts counter on a successful login
	if err := h.cache.Delete(failedLogin + account.ID); err != nil {
		log.Printf("Error clearing failed login counter: %v", err)
	}

	h.issueToken(w, r, account)
}

// HandleWalletLogin authenticates with a shareable wallet id and the account's
// passcode. A wallet that never set a passcode cannot log in this way; the
// owner has to use email and password instead.
func (h *authHandler) HandleWalletLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		WalletID  string              `json:"wallet_id"`
		Passcode  string              `json:"passcode"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.WalletID), "Wallet id is required")
	input.Validator.Check(validator.NotBlank(input.Passcode), "Passcode is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	account, found, err := h.accountRepo.GetByWalletID(input.WalletID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		input.Validator.AddError("Incorrect wallet id/passcode")
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if !account.HashedPasscode.Valid {
		message := "Passcode login is not enabled for this wallet"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	passcodeMatches, err := gopass.ComparePasswordAndHash(input.Passcode, account.HashedPasscode.String)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !passcodeMatches {
		input.Validator.AddError("Incorrect wallet id/passcode")
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if account.Status != store.AccountActiveStatus {
		message := "Account cannot be accessed at this time. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	h.issueToken(w, r, account)
}

func (h *authHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Code      string              `json:"code"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.NotBlank(input.Code), "Code is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	account, found, err := h.accountRepo.GetByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	// GetDel consumes the code, a second attempt with the same code fails
	code, err := h.cache.GetDel("otp:" + input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found || code == "" || code != input.Code {
		input.Validator.AddError("Invalid or expired verification code")
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if err := h.accountRepo.Verify(account.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	message := "Account verified successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleAuthLogout puts the presented token on the revocation list until the
// moment it would have expired on its own.
func (h *authHandler) HandleAuthLogout(w http.ResponseWriter, r *http.Request) {
	authorizationHeader := r.Header.Get("Authorization")

	headerParts := strings.Split(authorizationHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		h.errHandler.AuthenticationRequired(w, r)
		return
	}

	claims, err := jwt.HMACCheck([]byte(headerParts[1]), []byte(h.config.Jwt.SecretKey))
	if err != nil || !claims.Valid(time.Now()) {
		h.errHandler.InvalidAuthenticationToken(w, r)
		return
	}

	if claims.ID != "" && claims.Expires != nil {
		ttl := time.Until(claims.Expires.Time())
		if ttl > 0 {
			if err := h.cache.Set("revoked:"+claims.ID, "1", ttl); err != nil {
				h.errHandler.ServerError(w, r, err)
				return
			}
		}
	}

	message := "Logged out successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *authHandler) issueToken(w http.ResponseWriter, r *http.Request, account *models.Account) {
	var claims jwt.Claims
	claims.Subject = account.ID
	claims.ID = uuid.NewString()

	expiry := time.Now().Add(tokenTTL)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.config.BaseURL
	claims.Audiences = []string{h.config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.config.Jwt.SecretKey))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
		"wallet_id":    account.WalletID,
	}
	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
