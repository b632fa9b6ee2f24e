package core

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"droughtwatch/internal/types"
)

const errCodeValidationInvalidInput types.ErrorCode = "validation_invalid_input"

// Validator wraps go-playground/validator with the domain enum tags so
// request structs can declare `validate:"indicator"` and friends.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator builds a Validator with the custom tags registered.
// Registration only fails on a nil/empty tag, so errors here are ignored.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	_ = v.RegisterValidation("indicator", func(fl validator.FieldLevel) bool {
		return types.Indicator(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("operator", func(fl validator.FieldLevel) bool {
		return types.Operator(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("combination_rule", func(fl validator.FieldLevel) bool {
		return types.CombinationRule(fl.Field().String()).Valid()
	})

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct validates s and converts failures into a 400 AppError whose
// details map each offending field to its failed rule. The error code is
// chosen from the first failure so enum violations surface their domain code.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: the caller passed a non-struct.
		v.logger.Error("validator received a non-struct value", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "invalid validation target", err)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = fe.Tag()
	}

	return types.NewAppErrorWithDetails(
		codeForTag(fieldErrs[0].Tag()),
		"request validation failed",
		err,
		details,
	)
}

func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "indicator":
		return types.ErrCodeValidationInvalidIndicator
	case "operator":
		return types.ErrCodeValidationInvalidOperator
	case "combination_rule":
		return types.ErrCodeValidationInvalidRule
	case "required":
		return types.ErrCodeValidationMissingField
	default:
		return errCodeValidationInvalidInput
	}
}

// fieldPath strips the top-level struct name from the validator namespace,
// e.g. "CreateTriggerRequest.Conditions[0].Indicator" -> "Conditions[0].Indicator".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
