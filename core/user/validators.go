package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

var (
	phoneTag  = "phone"
	phoneText = "please enter a valid 10-digit phone number"
)

// InitValidators registers user-specific validators; must be called once at startup.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
}

// phoneValidation expects a 10-digit number; raw entries must be passed
// through NormalizePhone first.
func phoneValidation(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}
