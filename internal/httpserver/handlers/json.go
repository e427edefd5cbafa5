package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, what+" not found")
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
// An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// bind decodes and validates a request body. On failure it writes the
// response and returns false.
func bind(d deps.Deps, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := d.Validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe)] = describe(fe)
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "title and content cannot both be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "hexcolor", "len":
		return "must be a #RRGGBB color"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "dive", "min":
		return "must not be empty"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// NewValidator returns a validator reporting json field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
