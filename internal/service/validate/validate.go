// Package validate checks user input before it reaches storage.
// Every check returns a Result that maps offending fields to messages.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
)

const (
	MinPasswordLength = 8
	MinNameLength     = 2
	MaxNameLength     = 50

	MaxPostTitleLength   = 200
	MaxPostExcerptLength = 300

	MaxProductNameLength = 200
)

const (
	msgRequired     = "This field is required"
	msgTooShort     = "Value is too short (minimum %d)"
	msgTooLong      = "Value is too long (maximum %d)"
	msgInvalidEmail = "Invalid email address"
	msgInvalidURL   = "Invalid URL"
	msgInvalid      = "Invalid value"
	msgNegative     = "Value must not be negative"
)

var v = validator.New()

type Result struct {
	fields map[string]string
}

func (r *Result) add(field string, message string) {
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	// First problem of the field wins
	if _, ok := r.fields[field]; !ok {
		r.fields[field] = message
	}
}

func (r Result) Valid() bool {
	return len(r.fields) == 0
}

func (r Result) Fields() map[string]string {
	return r.fields
}

// Err returns *apperrors.ValidationError or nil if result is valid
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &apperrors.ValidationError{Fields: r.fields}
}

// Field is a validation error of the single field
func Field(field string, message string) error {
	var r Result
	r.add(field, message)
	return r.Err()
}

// NormalizeEmail is the form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Registration(email string, password string, name string) Result {
	var r Result
	r.email("email", email)
	r.length("password", password, MinPasswordLength, 0)
	r.length("name", strings.TrimSpace(name), MinNameLength, MaxNameLength)
	return r
}

func Login(email string, password string) Result {
	var r Result
	r.email("email", email)
	r.required("password", password)
	return r
}

func RefreshToken(token string) Result {
	var r Result
	r.required("refreshToken", token)
	return r
}

func Post(title string, content string, excerpt string, status string, featuredImage *string) Result {
	var r Result
	r.length("title", strings.TrimSpace(title), 1, MaxPostTitleLength)
	r.required("content", strings.TrimSpace(content))
	r.length("excerpt", strings.TrimSpace(excerpt), 1, MaxPostExcerptLength)
	if status != "" && status != models.PostStatusDraft && status != models.PostStatusPublished {
		r.add("status", msgInvalid)
	}
	if featuredImage != nil {
		r.url("featuredImage", *featuredImage)
	}
	return r
}

func Product(name string, sku string, category string, status string, price decimal.Decimal, compareAtPrice *decimal.Decimal, stock int, images []string) Result {
	var r Result
	r.length("name", strings.TrimSpace(name), 1, MaxProductNameLength)
	r.required("sku", strings.TrimSpace(sku))
	r.required("category", strings.TrimSpace(category))
	switch status {
	case "", models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusOutOfStock:
	default:
		r.add("status", msgInvalid)
	}
	if price.IsNegative() {
		r.add("price", msgNegative)
	}
	if compareAtPrice != nil && compareAtPrice.IsNegative() {
		r.add("compareAtPrice", msgNegative)
	}
	if stock < 0 {
		r.add("stock", msgNegative)
	}
	for i, image := range images {
		r.url(fmt.Sprintf("images[%d]", i), image)
	}
	return r
}

func (r *Result) required(field string, value string) {
	if value == "" {
		r.add(field, msgRequired)
	}
}

// length checks value length in runes; zero max means unlimited
func (r *Result) length(field string, value string, minLen int, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		r.add(field, msgRequired)
	case n < minLen:
		r.add(field, fmt.Sprintf(msgTooShort, minLen))
	case maxLen > 0 && n > maxLen:
		r.add(field, fmt.Sprintf(msgTooLong, maxLen))
	}
}

func (r *Result) email(field string, value string) {
	value = NormalizeEmail(value)
	if value == "" {
		r.add(field, msgRequired)
		return
	}
	if v.Var(value, "email") != nil {
		r.add(field, msgInvalidEmail)
	}
}

func (r *Result) url(field string, value string) {
	if v.Var(value, "required,http_url") != nil {
		r.add(field, msgInvalidURL)
	}
}
