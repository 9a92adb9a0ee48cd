package user

import (
	"context"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

// User is a registered student; created exclusively by the registration flow.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	CollegeName  string    `json:"college_name"`
	CourseBranch string    `json:"course_branch"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

var (
	phoneJunkRegex = regexp.MustCompile(`[\s\-.()+]`)
	phoneRegex     = regexp.MustCompile(`^\d{10}$`)
)

// ValidPhone reports whether s is a normalized 10-digit number.
func ValidPhone(s string) bool { return phoneRegex.MatchString(s) }

// NormalizePhone strips punctuation and whitespace from a raw phone entry and
// drops a leading "91" country code when a 10-digit national number remains.
// Normalization is idempotent: an already-normalized number is unchanged.
func NormalizePhone(raw string) string {
	cleaned := phoneJunkRegex.ReplaceAllString(raw, "")
	if len(cleaned) == 12 && cleaned[:2] == "91" {
		cleaned = cleaned[2:]
	}
	return cleaned
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FullName     string `json:"full_name" validate:"required,min=2"`
	Email        string `json:"email" validate:"required,email"`
	PhoneNumber  string `json:"phone_number" validate:"required,phone"`
	CollegeName  string `json:"college_name" validate:"required,min=2"`
	CourseBranch string `json:"course_branch" validate:"required,min=2"`
	Password     string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.PhoneNumber = NormalizePhone(core.CleanString(nu.PhoneNumber))
	nu.CollegeName = core.CleanString(nu.CollegeName)
	nu.CourseBranch = core.CleanString(nu.CourseBranch)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}
