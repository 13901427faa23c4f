package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type countriesRequest struct {
	CountriesNum int    `json:"countriesNum" validate:"omitempty,min=1,max=250"`
	ReloadLang   string `json:"reloadLang" validate:"omitempty,oneof=en ru de"`
}

type countryRequest struct {
	CountryID  string `json:"countryID" validate:"required,mongodb"`
	ReloadLang string `json:"reloadLang" validate:"omitempty,oneof=en ru de"`
}

type countryIDRequest struct {
	CountryID string `json:"countryID" validate:"required,mongodb"`
}

type ratingRequest struct {
	CountryID string `json:"countryID" validate:"required,mongodb"`
	SightID   string `json:"sightID" validate:"required,mongodb"`
	UserID    string `json:"userID" validate:"required,mongodb"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
}

type registerRequest struct {
	Login    string `json:"login" validate:"required,word"`
	Password string `json:"password" validate:"min=6,word"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var wordRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("word", func(fl validator.FieldLevel) bool {
		return wordRe.MatchString(fl.Field().String())
	})
	return v
}

var errMalformedBody = errors.New("malformed JSON body")

// readJSON reads an optional JSON object into dst. An empty body decodes as {}.
func readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func decodeJSON(r *http.Request, dst any) ([]fieldError, error) {
	if err := readJSON(r, dst); err != nil {
		return nil, err
	}
	return validateStruct(dst), nil
}

func validateStruct(v any) []fieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []fieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, fieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "mongodb":
		return "must be a 24-character hex id"
	case "word":
		return "may contain only latin letters, digits and underscores"
	}
	return "is invalid"
}
