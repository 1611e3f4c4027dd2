package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCreate проверяет нормализованный CreateTaskRequest на ограничения задачи.
// now - время создания, срок должен быть строго позже него.
func ValidateCreate(req *CreateTaskRequest, now time.Time) error {
	if err := validate.Struct(req); err != nil {
		return translate(err)
	}
	if req.DueDate != nil && !req.DueDate.After(now) {
		return NewValidationError("due_date", "must be in the future")
	}
	return nil
}

// ValidateUpdate проверяет каждое присутствующее поле нормализованного UpdateTaskRequest.
func ValidateUpdate(req *UpdateTaskRequest, now time.Time) error {
	if req.Title.Set {
		if req.Title.Null {
			return NewValidationError("title", "cannot be null")
		}
		if err := validateTitle(req.Title.Value); err != nil {
			return err
		}
	}
	if req.Description.Set && !req.Description.Null {
		if utf8.RuneCountInString(req.Description.Value) > DescriptionMaxLength {
			return NewValidationError("description", fmt.Sprintf("must be at most %d characters", DescriptionMaxLength))
		}
	}
	if req.DueDate.Set && req.DueDate.Value != nil && !req.DueDate.Value.After(now) {
		return NewValidationError("due_date", "must be in the future")
	}
	if req.Status.Set {
		if req.Status.Null {
			return NewValidationError("status", "cannot be null")
		}
		if !req.Status.Value.Valid() {
			return NewValidationError("status", "must be one of: pending, in_progress, completed")
		}
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return NewValidationError("title", "cannot be empty or whitespace only")
	}
	if n > TitleMaxLength {
		return NewValidationError("title", fmt.Sprintf("must be at most %d characters", TitleMaxLength))
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "min":
		if field == "title" {
			return NewValidationError(field, "cannot be empty or whitespace only")
		}
		return NewValidationError(field, "is required")
	case "max":
		return NewValidationError(field, fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "oneof":
		return NewValidationError(field, "must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return NewValidationError(field, "is invalid")
	}
}
