package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// в сообщениях валидатора - имена полей как в JSON
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

type validationError struct {
	fields validator.ValidationErrors
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, fe := range e.fields {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// decodeJSON читает тело запроса и проверяет теги validate
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON - то же, но пустое тело допустимо
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return validateStruct(dst)
			}
			return fmt.Errorf("%w: empty body", errInvalidJSON)
		}
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errInvalidJSON)
	}

	return validateStruct(dst)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return &validationError{fields: ve}
		}
		return err
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidParam, name, raw)
	}
	return id, nil
}

// pageRequest: ?offset=&limit=, по умолчанию первая страница
func pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		return domain.PageRequest{}, fmt.Errorf("%w: offset", errInvalidParam)
	}
	limit, err := queryInt(q.Get("limit"), domain.DefaultPageLimit)
	if err != nil {
		return domain.PageRequest{}, fmt.Errorf("%w: limit", errInvalidParam)
	}
	if offset < 0 || limit < 1 || limit > domain.MaxPageLimit {
		return domain.PageRequest{}, fmt.Errorf("%w: offset=%d limit=%d", errs.ErrInvalidPaginationRequest, offset, limit)
	}

	return domain.NewPageRequest(offset, limit), nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
