package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// ---- Setup (CFG) ----

const CodeConfigIncomplete = "CFG_001"

func ErrConfigIncomplete() *AppError {
	return New(CodeConfigIncomplete, "Payment gateway setup incomplete, required keys not set", http.StatusUnprocessableEntity)
}

// ---- Crypto (CRY) ----

const (
	CodeInvalidKeyLength     = "CRY_001"
	CodeHashGenerationFailed = "CRY_002"
)

func ErrInvalidKeyLength(size int) *AppError {
	return New(CodeInvalidKeyLength, fmt.Sprintf("Secret key must be 16, 24 or 32 bytes, got %d", size), http.StatusInternalServerError)
}

func ErrHashGenerationFailed(err error) *AppError {
	return Wrap(CodeHashGenerationFailed, "Error while generating hash", http.StatusInternalServerError, err)
}

// ---- Sell request (QR) ----

const CodeQrRenderFailed = "QR_001"

func ErrQrRenderFailed(err error) *AppError {
	return Wrap(CodeQrRenderFailed, "Failed to create QR code", http.StatusInternalServerError, err)
}

// ---- Refund (RFD) ----

const (
	CodeNetworkError     = "RFD_001"
	CodeProviderRejected = "RFD_002"
	CodeCorruptResponse  = "RFD_003"
	CodeProviderDeclined = "RFD_004"
	CodeEncodingFailed   = "RFD_005"
)

func ErrNetworkError(err error) *AppError {
	return Wrap(CodeNetworkError, "Refund request could not reach the provider", http.StatusBadGateway, err)
}

func ErrProviderRejected(status int) *AppError {
	return New(CodeProviderRejected, fmt.Sprintf("Provider responded with status %d", status), http.StatusBadGateway)
}

func ErrCorruptResponse() *AppError {
	return New(CodeCorruptResponse, "Provider response body corrupted or missing", http.StatusBadGateway)
}

func ErrProviderDeclined(message string) *AppError {
	if message == "" {
		message = "Provider declined the refund"
	}
	return New(CodeProviderDeclined, message, http.StatusUnprocessableEntity)
}

func ErrEncodingFailed(err error) *AppError {
	return Wrap(CodeEncodingFailed, "Failed to encode refund request", http.StatusInternalServerError, err)
}

// ---- Callback (IPN) ----

const (
	CodeTokenMissing          = "IPN_000"
	CodeMissingParameters     = "IPN_001"
	CodeMissingRequiredFields = "IPN_002"
	CodeServiceIDMismatch     = "IPN_003"
	CodeOrderNotFound         = "IPN_004"
	CodeTokenMismatch         = "IPN_005"
)

func ErrTokenMissing() *AppError {
	return New(CodeTokenMissing, "Authentication token missing, failed to verify.", http.StatusBadRequest)
}

func ErrTokenMismatch() *AppError {
	return New(CodeTokenMismatch, "Webshop authentication failed, token mismatch.", http.StatusBadRequest)
}

func ErrMissingParameters() *AppError {
	return New(CodeMissingParameters, "Missing parameters.", http.StatusBadRequest)
}

func ErrMissingRequiredFields() *AppError {
	return New(CodeMissingRequiredFields, "Missing or corrupt required parametars.", http.StatusBadRequest)
}

func ErrServiceIDMismatch(tid string) *AppError {
	return New(CodeServiceIDMismatch, fmt.Sprintf("Webshop verification failed, mismatch for TID %s.", tid), http.StatusBadRequest)
}

func ErrOrderNotFound(billID string) *AppError {
	return New(CodeOrderNotFound, fmt.Sprintf("Couldn't find corresponding order %s.", billID), http.StatusBadRequest)
}

// ---- Payment (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrRefundAmountExceedsOriginal() *AppError {
	return New("PAY_007", "Refund amount exceeds remaining order amount", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidNonce() *AppError {
	return New("AUTH_005", "Invalid or expired nonce", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
