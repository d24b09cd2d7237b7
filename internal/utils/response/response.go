package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookloop/booking-platform/internal/errors"
	"github.com/go-playground/validator/v10"
)

// Envelope is the wire shape every endpoint speaks: {"msg": ..., "data": ...}
// on success, {"msg": ...} on error. The frontend depends on it.
type Envelope struct {
	Msg    string   `json:"msg"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, msg string, data any) {
	WriteJson(w, statusCode, Envelope{
		Msg:  msg,
		Data: data,
	})
}

func Error(w http.ResponseWriter, err error) {

	statusCode := http.StatusInternalServerError
	msg := "Internal Server Error"

	if appErr, ok := errors.IsAppError(err); ok {
		statusCode = appErr.StatusCode
		msg = appErr.Message
	}

	WriteJson(w, statusCode, Envelope{Msg: msg})
}

// ValidationError reports every failed field at once.
func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {

	var errMsgs []string

	for _, err := range errs {

		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field %s is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field %s must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("Field %s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field %s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field %s must be one of: %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field %s must be at least %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field %s is invalid: %s=%s", err.Field(), err.Tag(), err.Param())
		}

		errMsgs = append(errMsgs, message)
	}

	WriteJson(w, http.StatusBadRequest, Envelope{
		Msg:    "Validation failed",
		Errors: errMsgs,
	})
}
