package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lyricmix/go-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrPlaylistIDRequired):
		return http.StatusBadRequest, e.ErrPlaylistIDRequired.Error()
	case errors.Is(err, e.ErrAccessTokenRequired):
		return http.StatusUnauthorized, e.ErrAccessTokenRequired.Error()
	case errors.Is(err, e.ErrUserIDRequired):
		return http.StatusBadRequest, e.ErrUserIDRequired.Error()
	case errors.Is(err, e.ErrNoEmbeddings):
		return http.StatusUnprocessableEntity, e.ErrNoEmbeddings.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
