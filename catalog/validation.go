package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// PromotionalTextLength is the maximum number of characters of a promotional text.
	PromotionalTextLength = 200

	// MaxAuthors is the maximum number of authors, bounded by the byte-sized AuthorLink.Order.
	MaxAuthors = 256

	// MinNumStars and MaxNumStars bound the rating of a Review.
	MinNumStars = 1
	MaxNumStars = 5
)

const (
	FieldNameTitle           = "title"
	FieldNameAuthors         = "authors"
	FieldNamePromotionalText = "promotionalText"
	FieldNameNumStars        = "numStars"
)

type bookInput struct {
	Title   string   `field:"title"   validate:"notblank"`
	Authors []Author `field:"authors" validate:"min=1,max=256"`
}

type promotionInput struct {
	PromotionalText string `field:"promotionalText" validate:"notblank,max=200"`
}

type reviewInput struct {
	NumStars int `field:"numStars" validate:"min=1,max=5"`
}

var validationMessages = map[string]string{
	"Title.notblank":           "The book title cannot be empty.",
	"Authors.min":              "You must have at least one Author for a book.",
	"Authors.max":              fmt.Sprintf("A book cannot have more than %d authors.", MaxAuthors),
	"PromotionalText.notblank": "You must provide some text to go with the promotion.",
	"PromotionalText.max":      fmt.Sprintf("The promotional text cannot be longer than %d characters.", PromotionalTextLength),
	"NumStars.min":             fmt.Sprintf("The rating must be between %d and %d stars.", MinNumStars, MaxNumStars),
	"NumStars.max":             fmt.Sprintf("The rating must be between %d and %d stars.", MinNumStars, MaxNumStars),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}

		return fld.Name
	})

	// "notblank" also rejects whitespace-only strings, unlike "required".
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// validateInput runs the struct validation and converts the result into ValidationErrors, nil if valid.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		message, ok := validationMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			message = fmt.Sprintf("The %s is invalid.", fe.Field())
		}

		result = append(result, FieldError{Field: fe.Field(), Message: message})
	}

	return result
}
