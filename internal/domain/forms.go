package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form fields are pointers so "not filled in" and "zero" stay distinct.

type AddLineForm struct {
	ProductID *int64   `json:"product_id" validate:"required"`
	Quantity  *int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice *float64 `json:"unit_price" validate:"required,gte=0"`
}

type ProductForm struct {
	Name         string   `json:"nome" validate:"required"`
	CategoryName string   `json:"nome_categoria" validate:"required"`
	CostPrice    *float64 `json:"preco_custo" validate:"required,gte=0"`
	SalePrice    *float64 `json:"preco_venda" validate:"required,gte=0"`
}

type StockIntakeForm struct {
	ProductID *int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int   `json:"quantity" validate:"required,gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateForm runs the struct tags and reports the first failing field.
func ValidateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	return NewValidationError(fe.Field(), reasonFor(fe))
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be negative"
	default:
		return "invalid value"
	}
}
