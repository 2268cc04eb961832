package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, " ; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s est requis", field)
	case "email":
		return fmt.Sprintf("%s doit être une adresse email valide", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s doit contenir au moins %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être au moins %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s doit contenir au plus %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être au plus %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s est invalide", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username": "L'adresse email",
		"Password": "Le mot de passe",
		"Confirm":  "La confirmation",
		"Name":     "Le nom",
		"Category": "La catégorie",
		"Contact":  "Le numéro de téléphone",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
