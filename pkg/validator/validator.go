// Package validator envuelve go-playground/validator para los comandos de la aplicación.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Nombres de campo según la etiqueta json para que los errores coincidan con la API.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// dpos: decimal estrictamente positivo.
	_ = validate.RegisterValidation("dpos", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})
	// dnonneg: decimal mayor o igual a cero.
	_ = validate.RegisterValidation("dnonneg", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !d.IsNegative()
	})
}

// Struct valida v y devuelve *domain.ValidationError con los campos fallidos.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, domain.FieldError{Field: field, Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}
