package mockapi

import (
	"fmt"
	"math/rand"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Code     string `json:"code"`
	Token    string `json:"token"`

	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func accountJSON(a *Account) map[string]any {
	return map[string]any{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
		"phone": a.Phone,
	}
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}

	var existing Account
	if err := s.db.First(&existing, "email = ?", req.Email).Error; err == nil {
		return fail(c, http.StatusConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not create account")
	}

	account := Account{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hash),
	}
	if err := s.db.Create(&account).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not create account")
	}

	code := s.issueCode(req.Email, "register")
	// Dev convenience: the OTP goes to the log instead of an inbox.
	s.log.Info("verification code issued", "email", req.Email, "code", code)

	return ok(c, "verification code sent", nil)
}

func (s *Server) handleVerify(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if !s.consumeCode(req.Email, req.Code, "register") {
		return fail(c, http.StatusBadRequest, "invalid verification code")
	}

	var account Account
	if err := s.db.First(&account, "email = ?", req.Email).Error; err != nil {
		return fail(c, http.StatusNotFound, "account not found")
	}

	account.Verified = true
	if err := s.db.Save(&account).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not verify account")
	}
	s.seedAddresses(account.ID)

	token, err := s.issueToken(account.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}

	return ok(c, "account verified", map[string]any{
		"token": token,
		"user":  accountJSON(&account),
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	var account Account
	if err := s.db.First(&account, "email = ?", req.Email).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !account.Verified {
		return fail(c, http.StatusForbidden, "account not verified")
	}

	token, err := s.issueToken(account.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}

	return ok(c, "logged in", map[string]any{
		"token": token,
		"user":  accountJSON(&account),
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	// Tokens are stateless; logout only acknowledges.
	return ok(c, "logged out", nil)
}

func (s *Server) handleProfile(c echo.Context) error {
	return ok(c, "", map[string]any{"user": accountJSON(currentAccount(c))})
}

func (s *Server) handleEditProfile(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	account := currentAccount(c)
	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Phone != "" {
		account.Phone = req.Phone
	}
	if req.Email != "" {
		account.Email = req.Email
	}
	if err := s.db.Save(account).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not update profile")
	}

	return ok(c, "profile updated", map[string]any{"user": accountJSON(account)})
}

func (s *Server) handleChangePassword(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	account := currentAccount(c)
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.CurrentPassword)); err != nil {
		return fail(c, http.StatusBadRequest, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not change password")
	}
	account.Password = string(hash)
	if err := s.db.Save(account).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not change password")
	}

	return ok(c, "password changed", nil)
}

func (s *Server) handleDeleteAccount(c echo.Context) error {
	account := currentAccount(c)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&Favorite{}, &Address{}} {
			if err := tx.Delete(m, "account_id = ?", account.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&Account{}, account.ID).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not delete account")
	}

	return ok(c, "account deleted", nil)
}

func (s *Server) handleSendResetOTP(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	var account Account
	if err := s.db.First(&account, "email = ?", req.Email).Error; err != nil {
		// Do not reveal whether the address exists.
		return ok(c, "reset code sent", nil)
	}

	code := s.issueCode(req.Email, "reset")
	s.log.Info("reset code issued", "email", req.Email, "code", code)
	return ok(c, "reset code sent", nil)
}

func (s *Server) handleVerifyResetOTP(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if !s.consumeCode(req.Email, req.Code, "reset") {
		return fail(c, http.StatusBadRequest, "invalid reset code")
	}

	var account Account
	if err := s.db.First(&account, "email = ?", req.Email).Error; err != nil {
		return fail(c, http.StatusNotFound, "account not found")
	}

	resetToken, err := s.issueToken(account.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue reset token")
	}
	return ok(c, "code verified", map[string]any{"token": resetToken})
}

func (s *Server) handleSetNewPassword(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	// The reset token is a short-lived bearer for this single operation.
	parsed, err := s.parseToken(req.Token)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid reset token")
	}

	var account Account
	if err := s.db.First(&account, "id = ?", parsed).Error; err != nil {
		return fail(c, http.StatusNotFound, "account not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not set password")
	}
	account.Password = string(hash)
	if err := s.db.Save(&account).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not set password")
	}

	return ok(c, "password updated", nil)
}

func (s *Server) issueCode(email, purpose string) string {
	code := fmt.Sprintf("%04d", rand.Intn(10000))
	s.db.Create(&VerificationCode{Email: email, Code: code, Purpose: purpose})
	return code
}

func (s *Server) consumeCode(email, code, purpose string) bool {
	var vc VerificationCode
	err := s.db.Where("email = ? AND code = ? AND purpose = ?", email, code, purpose).
		Order("created_at DESC").First(&vc).Error
	if err != nil {
		return false
	}
	s.db.Delete(&vc)
	return true
}

// seedAddresses gives a newly verified account a home and an office address
// so checkout can be exercised immediately.
func (s *Server) seedAddresses(accountID uint) {
	addresses := []Address{
		{AccountID: accountID, Name: "Home", City: "Amman", Country: "JO", Address: "12 Rainbow St", Phone: "+962790000001", PostalCode: "11181"},
		{AccountID: accountID, Name: "Office", City: "Amman", Country: "JO", Address: "4 Mecca St", Phone: "+962790000002", PostalCode: "11196"},
	}
	if err := s.db.Create(&addresses).Error; err != nil {
		s.log.Warn("seed addresses", "err", err)
	}
}
