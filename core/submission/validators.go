package submission

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/submitly/backend/core"
)

var (
	categoryTag  = "category"
	categoryText = fmt.Sprintf("category must be one of: %s", joinCategories())
)

// InitValidators registers the submission validators.
func InitValidators(v *core.Validator) {
	_ = v.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(v.Validate, v.Translator, categoryTag, categoryText)
}

func joinCategories() string {
	cats := make([]string, 0, len(Categories))
	for _, c := range Categories {
		cats = append(cats, string(c))
	}
	return strings.Join(cats, ", ")
}

// categoryValidation only allows known categories.
func categoryValidation(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).IsValid()
}
