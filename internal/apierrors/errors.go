package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tranphatthinh/gramctl/internal/storage"
)

// Messages returned in the "error" field. Clients show them to the user as is.
const (
	MsgNotJSON            = "Request phải có Content-Type: application/json"
	MsgMissingCredentials = "Thiếu thông tin email hoặc mật khẩu"
	MsgEmailTaken         = "Email đã tồn tại"
	MsgBadCredentials     = "Sai tài khoản hoặc mật khẩu"
	MsgBadRefreshToken    = "Refresh Token không hợp lệ"
	MsgMissingToken       = "Thiếu hoặc sai định dạng token"
	MsgInvalidToken       = "Token không hợp lệ"
	MsgExpiredToken       = "Token đã hết hạn"
	MsgNoText             = "No text provided"
	MsgInvalidBody        = "Invalid JSON body"
	MsgRateLimited        = "Too many requests"
	MsgStorageUnavailable = "Storage service unavailable"
	MsgInternal           = "Internal server error"
)

// ErrorResponse is the error body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteJSON writes v as a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

// MapStorageError maps storage errors to HTTP responses
func MapStorageError(err error) (string, int) {
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		// The service reports duplicates as a bad request
		return MsgEmailTaken, http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return MsgInvalidToken, http.StatusForbidden
	case errors.Is(err, storage.ErrStorageUnavailable):
		return MsgStorageUnavailable, http.StatusServiceUnavailable
	default:
		return MsgInternal, http.StatusInternalServerError
	}
}
