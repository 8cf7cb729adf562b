package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"medimart_api/internal/reconcile"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CustomErrorHandler creates the central error handler for Echo. It
// maps the reconciliation error taxonomy to stable JSON responses and
// never leaks internals or secrets on a 500.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Server error"
	errorKind := "internal_error"

	var (
		validationErr   *reconcile.ValidationError
		notFoundErr     *reconcile.NotFoundError
		gatewayErr      *reconcile.GatewayUnavailableError
		verificationErr *reconcile.VerificationError
		conflictErr     *reconcile.ConflictError
		bindingErrs     validator.ValidationErrors
		httpErr         *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		message = validationErr.Msg
		errorKind = reconcile.KindValidation
	case errors.As(err, &notFoundErr):
		code = http.StatusNotFound
		message = notFoundErr.Error()
		errorKind = reconcile.KindNotFound
	case errors.As(err, &verificationErr):
		code = http.StatusBadRequest
		message = "Payment verification failed"
		errorKind = reconcile.KindVerification
	case errors.As(err, &conflictErr):
		code = http.StatusConflict
		message = conflictErr.Msg
		errorKind = reconcile.KindConflict
	case errors.As(err, &gatewayErr):
		// nothing was committed; the client may retry the whole create
		code = http.StatusInternalServerError
		message = "Payment gateway unavailable"
		errorKind = reconcile.KindGatewayUnavailable
	case errors.As(err, &bindingErrs):
		code = http.StatusBadRequest
		message = bindingErrs.Error()
		errorKind = reconcile.KindValidation
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
		errorKind = "http_error"
	}

	if code == http.StatusInternalServerError && errorKind == "internal_error" {
		// tag the log line and the response with the same id so the
		// client can report it without seeing internals
		errorID := uuid.NewString()
		c.Logger().Errorf("internal error %s: %v", errorID, err)
		message = "Server error (ref " + errorID + ")"
	} else {
		c.Logger().Error(err)
	}

	resp := errorResponse{
		Success: false,
		Message: message,
		Error:   errorKind,
	}
	if errorKind == reconcile.KindVerification {
		resp.Error = "invalid signature"
	}

	if jsonErr := c.JSON(code, resp); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
