package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Машиночитаемые коды ошибок для клиентов витрины
const (
	CodeSlotFull      = "SLOT_FULL"
	CodeDuplicateHold = "DUPLICATE_HOLD"
	CodeSlotInactive  = "SLOT_INACTIVE"
	CodeHoldExpired   = "HOLD_EXPIRED"
)

// ErrorResponse стандартное тело ошибки API
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`

	// Remaining заполняется только для SLOT_FULL
	Remaining *int `json:"remaining,omitempty"`
}

// DecodeJSON декодирует тело запроса в v
// Неизвестные поля считаются ошибкой клиента
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}

	return nil
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// RespondError пишет ошибку с сообщением без машиночитаемого кода
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondErrorCode пишет ошибку с машиночитаемым кодом
func RespondErrorCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// RespondSlotFull пишет 409 SLOT_FULL с количеством оставшихся мест
func RespondSlotFull(w http.ResponseWriter, remaining int, message string) {
	RespondJSON(w, http.StatusConflict, ErrorResponse{
		Code:      CodeSlotFull,
		Message:   message,
		Remaining: &remaining,
	})
}

// RespondBadRequest пишет 400 с сообщением
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondNotFound пишет 404 с сообщением
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondInternalError пишет 500 со стандартным сообщением
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "внутренняя ошибка сервиса")
}
