package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// ValidateDoubtCreate validates doubt creation business rules
func (bv *BusinessValidator) ValidateDoubtCreate(req *DoubtCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateDoubtUpdate validates doubt update business rules. At least
// one of title/content must be present.
func (bv *BusinessValidator) ValidateDoubtUpdate(req *DoubtUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Title == nil && req.Content == nil {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "at least one of title or content must be provided",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateAnswerCreate validates answer creation business rules
func (bv *BusinessValidator) ValidateAnswerCreate(req *AnswerCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (5-100 characters after trimming). Bounds count
	// runes, not bytes, so non-ASCII text gets the full budget.
	bv.validate.RegisterValidation("doubt_title", func(fl validator.FieldLevel) bool {
		title := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return title >= 5 && title <= 100
	})

	// Doubt content validation (10-1000 characters)
	bv.validate.RegisterValidation("doubt_content", func(fl validator.FieldLevel) bool {
		content := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return content >= 10 && content <= 1000
	})

	// Answer content validation (10-2000 characters)
	bv.validate.RegisterValidation("answer_content", func(fl validator.FieldLevel) bool {
		content := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return content >= 10 && content <= 2000
	})

	// user role validation
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	// doubt status validation
	bv.validate.RegisterValidation("doubt_status", func(fl validator.FieldLevel) bool {
		return models.DoubtStatus(fl.Field().String()).IsValid()
	})
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "doubt_title":
		return "must be between 5 and 100 characters"
	case "doubt_content":
		return "must be between 10 and 1000 characters"
	case "answer_content":
		return "must be between 10 and 2000 characters"
	case "user_role":
		return "must be STUDENT or INSTRUCTOR"
	case "doubt_status":
		return "must be OPEN or RESOLVED"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
