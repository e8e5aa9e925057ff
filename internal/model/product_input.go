package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProductInput is the client-supplied payload for creating a product.
// A zero price counts as missing.
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Image       string  `json:"image"`
}

// ValidationError lists the offending fields of a ProductInput, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
	// order keeps the struct field order so Error is deterministic.
	order []string
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = msg
}

// Error returns the message of the first invalid field.
func (e *ValidationError) Error() string {
	if len(e.order) == 0 {
		return "invalid product input"
	}
	return e.Fields[e.order[0]]
}

// Validate checks field presence. It returns nil or a *ValidationError.
func (in ProductInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating product input: %w", err)
	}

	result := &ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			result.add(fe.Field(), fe.Field()+" is required")
		default:
			result.add(fe.Field(), fe.Field()+" is invalid")
		}
	}
	return result
}

// ToProduct converts a validated input into a new, not yet persisted Product.
func (in ProductInput) ToProduct() *Product {
	return &Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
	}
}
