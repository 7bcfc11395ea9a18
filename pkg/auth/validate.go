package auth

import (
	"net/mail"
	"strings"

	"github.com/artem13815/finance/pkg/apperr"
)

const (
	maxNameLen  = 100
	maxEmailLen = 256
	maxBioLen   = 1000
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
}

// Validate checks required fields and the password confirmation.
func (in RegisterInput) Validate() error {
	if err := validateName("firstName", in.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", in.LastName); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.Password) == "" {
		return apperr.Invalid("password", "is required")
	}
	if len(in.Password) > maxPasswordLen {
		return apperr.Invalid("password", "must be at most 72 bytes")
	}
	if in.Password != in.ConfirmPassword {
		return apperr.Invalid("confirmPassword", "does not match password")
	}
	return nil
}

// ProfileInput holds the mutable profile fields.
type ProfileInput struct {
	FirstName string
	LastName  string
	Bio       *string
}

func (in *ProfileInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if bio == "" {
			in.Bio = nil
		} else {
			in.Bio = &bio
		}
	}
}

func (in ProfileInput) Validate() error {
	if err := validateName("firstName", in.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", in.LastName); err != nil {
		return err
	}
	if in.Bio != nil && len([]rune(*in.Bio)) > maxBioLen {
		return apperr.Invalid("bio", "must be at most 1000 characters")
	}
	return nil
}

func validateName(field, v string) error {
	if v == "" {
		return apperr.Invalid(field, "is required")
	}
	if len([]rune(v)) > maxNameLen {
		return apperr.Invalid(field, "must be at most 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Invalid("email", "is required")
	}
	if len(email) > maxEmailLen {
		return apperr.Invalid("email", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Invalid("email", "is not a valid address")
	}
	return nil
}
