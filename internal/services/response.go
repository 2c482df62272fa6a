package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// runParams are the path parameters of the run lookup routes.
type runParams struct {
	RunID string `json:"runId" validate:"required,uuid"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func runParamsFrom(r *http.Request) (runParams, error) {
	params := runParams{RunID: chi.URLParam(r, "runId")}
	return params, validate.Struct(params)
}

// writeError sends message with status. Field failures found in err are
// listed under details.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		resp.Details = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			if fe.Param() != "" {
				resp.Details[fe.Field()] = fmt.Sprintf("failed '%s=%s'", fe.Tag(), fe.Param())
				continue
			}
			resp.Details[fe.Field()] = fmt.Sprintf("failed '%s'", fe.Tag())
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
