package shortlink

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bcrypt rejects input beyond 72 bytes.
const maxPasswordBytes = 72

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

type linkInput struct {
	URL string `validate:"required,max=2048,url"`
}

type credentialInput struct {
	Username string `validate:"required,max=64,username"`
	Password string `validate:"required,bcryptlen"`
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) error {
	if err := validate.Struct(linkInput{URL: raw}); err != nil {
		return fmt.Errorf("%w: url: %v", ErrInvalidInput, err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: url: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidInput)
	}
	if strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}
	return nil
}

// ValidateID checks short id syntax only; existence is the store's business.
func ValidateID(id string) error {
	if err := validate.Var(id, "required,alphanum,max=32"); err != nil {
		return fmt.Errorf("%w: id", ErrInvalidInput)
	}
	return nil
}

func ValidateCredentials(username, password string) error {
	if err := validate.Struct(credentialInput{Username: username, Password: password}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func ValidatePassword(password string) error {
	if err := validate.Var(password, "required,bcryptlen"); err != nil {
		return fmt.Errorf("%w: password", ErrInvalidInput)
	}
	return nil
}
