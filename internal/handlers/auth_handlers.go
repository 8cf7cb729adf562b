package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"medimart_api/internal/middleware"
	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
	"medimart_api/internal/services"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *services.TokenService
	mailer *services.EmailService
}

func NewAuthHandler(db *gorm.DB, tokens *services.TokenService, mailer *services.EmailService) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, mailer: mailer}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	MobileNo string `json:"mobile_no" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=patient doctor clinic"`
}

// Register creates an account with the requested role. The admin role
// cannot be self-assigned.
func (h *AuthHandler) Register(c echo.Context) error {
	req := new(registerRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var count int64
	h.db.Model(&models.User{}).Where("email = ? OR mobile_no = ?", req.Email, req.MobileNo).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Email or mobile number already exists")
	}

	var role models.Role
	if err := h.db.Where("name = ?", req.Role).First(&role).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "role"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		MobileNo: req.MobileNo,
		Password: string(hashed),
		RoleID:   role.ID,
		Role:     role,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	token, err := h.tokens.Generate(&user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "User created successfully",
		Data:    map[string]interface{}{"user": user, "token": token},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Preload("Role").Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	token, err := h.tokens.Generate(&user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Logged in successfully",
		Data:    map[string]interface{}{"user": user, "token": token},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword mails a one-time 6-digit code to the account email
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	req := new(forgotPasswordRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "user"}
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := h.db.Model(&user).Update("reset_token", otp).Error; err != nil {
		return err
	}

	if err := h.mailer.SendResetOTP(user.Email, otp); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send OTP email")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "OTP sent to email"})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	req := new(verifyOTPRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var user models.User
	err := h.db.Where("email = ? AND reset_token = ?", req.Email, req.OTP).First(&user).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP or email")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "OTP verified"})
}

type changePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	req := new(changePasswordRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var user models.User
	err := h.db.Where("email = ? AND reset_token = ?", req.Email, req.OTP).First(&user).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP or email")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"password": string(hashed), "reset_token": ""}
	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Password changed successfully"})
}

// Me returns the authenticated account
func (h *AuthHandler) Me(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)

	var user models.User
	if err := h.db.Preload("Role").First(&user, userID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "user"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
