package services

import (
	"fmt"

	"toko/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// validateStruct runs the struct's validate tags and reports failures as
// InvalidInput naming every offending field.
func validateStruct(v *validator.Validate, what string, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.InvalidInput("%s validation failed: %v", what, err)
	}
	msgs := lo.Map(verrs, func(e validator.FieldError, _ int) string {
		return fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	})
	return apperrors.InvalidInput("%s validation failed: %v", what, msgs)
}
