package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	// Generate custom message based on tag
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s must be at least", e.Field)
	case "max":
		return fmt.Sprintf("%s must be at most", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	case "":
		return fmt.Sprintf("%s failed validation", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validator provides configuration validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	validate := validator.New()

	// Register custom validation functions
	if err := registerAllValidators(validate); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Validator{validate: validate}, nil
}

// ValidateConfig validates a configuration struct.
func (v *Validator) ValidateConfig(config *Config) error {
	// Check for nil config first
	if config == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "config",
				Tag:     "required",
				Value:   nil,
				Message: "config is nil",
			},
		}
	}

	err := v.validate.Struct(config)
	if err == nil {
		// Perform additional custom validations if struct validation passes
		if customErrors := v.validateCustomRules(config); len(customErrors) > 0 {
			return customErrors
		}
		return nil
	}

	// Convert validator errors to our custom error format
	var validationErrors ValidationErrors

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Value:   e.Value(),
				Message: getValidationMessage(e),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			Message: err.Error(),
		})
	}

	// Perform additional custom validations
	if customErrors := v.validateCustomRules(config); len(customErrors) > 0 {
		validationErrors = append(validationErrors, customErrors...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateCustomRules performs additional custom validation rules.
func (v *Validator) validateCustomRules(config *Config) ValidationErrors {
	var errors ValidationErrors

	// Check for nil config
	if config == nil {
		errors = append(errors, ValidationError{
			Field:   "config",
			Tag:     "required",
			Value:   nil,
			Message: "config cannot be nil",
		})
		return errors
	}

	// Validate generative backend configuration consistency
	if errs := v.validateLLMConfig(&config.LLM); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	// Validate reference provider configuration
	if errs := v.validateReferenceConfig(&config.Reference); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	// Validate task budgets against the aggregate deadline
	if errs := v.validateTasksConfig(&config.Tasks); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	// Validate cache configuration
	if errs := v.validateCacheConfig(&config.Cache); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	return errors
}

// validateLLMConfig validates generative backend configuration.
func (v *Validator) validateLLMConfig(config *LLMConfig) ValidationErrors {
	var errors ValidationErrors

	// A limiter with a positive rate but zero burst can never admit a request
	if config.RateLimit.RequestsPerSecond > 0 && config.RateLimit.Burst <= 0 {
		errors = append(errors, ValidationError{
			Field:   "LLM.RateLimit.Burst",
			Message: "rate limit burst must be positive when requests per second is set",
		})
	}

	// Anthropic uses its own SDK endpoint; a base URL override is only
	// meaningful for the OpenAI-compatible providers
	if config.Provider == "anthropic" && config.Path != "" {
		errors = append(errors, ValidationError{
			Field:   "LLM.Path",
			Message: "path override is not supported for the anthropic provider",
		})
	}

	return errors
}

// validateReferenceConfig validates reference provider configuration.
func (v *Validator) validateReferenceConfig(config *ReferenceConfig) ValidationErrors {
	var errors ValidationErrors

	if config.RateLimit.RequestsPerSecond > 0 && config.RateLimit.Burst <= 0 {
		errors = append(errors, ValidationError{
			Field:   "Reference.RateLimit.Burst",
			Message: "rate limit burst must be positive when requests per second is set",
		})
	}

	return errors
}

// validateTasksConfig validates task budget relationships.
func (v *Validator) validateTasksConfig(config *TasksConfig) ValidationErrors {
	var errors ValidationErrors

	if config.AggregateTimeout <= 0 {
		return errors
	}

	// A per-task budget larger than the aggregate deadline would be cut off
	// by the request context before its own timer fires
	budgets := []struct {
		field  string
		budget BudgetConfig
	}{
		{"Tasks.Budgets.Simple", config.Budgets.Simple},
		{"Tasks.Budgets.Medium", config.Budgets.Medium},
		{"Tasks.Budgets.Complex", config.Budgets.Complex},
		{"Tasks.Budgets.Discovery", config.Budgets.Discovery},
	}
	for _, b := range budgets {
		if b.budget.Timeout > config.AggregateTimeout {
			errors = append(errors, ValidationError{
				Field:   b.field + ".Timeout",
				Value:   b.budget.Timeout,
				Message: fmt.Sprintf("budget timeout %v for %s exceeds aggregate timeout %v", b.budget.Timeout, b.field, config.AggregateTimeout),
			})
		}
	}

	return errors
}

// validateCacheConfig validates cache configuration.
func (v *Validator) validateCacheConfig(config *CacheConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Enabled && config.TTL <= 0 {
		errors = append(errors, ValidationError{
			Field:   "Cache.TTL",
			Value:   config.TTL,
			Message: "cache TTL must be positive when the cache is enabled",
		})
	}

	return errors
}

// registerAllValidators registers all custom validators.
func registerAllValidators(validate *validator.Validate) error {
	validators := map[string]validator.Func{
		"url":          validateURL,
		"max_duration": validateMaxDuration,
	}

	for name, fn := range validators {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return fmt.Errorf("failed to register validator '%s': %w", name, err)
		}
	}

	return nil
}

// validateMaxDuration validates maximum duration.
func validateMaxDuration(fl validator.FieldLevel) bool {
	duration := fl.Field().Interface().(time.Duration)
	maxDuration, err := time.ParseDuration(fl.Param())
	if err != nil {
		return false
	}
	return duration <= maxDuration
}

// validateURL validates URLs.
func validateURL(fl validator.FieldLevel) bool {
	url := fl.Field().String()
	if url == "" {
		return true // Allow empty URLs
	}
	// Basic URL validation
	urlRegex := regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
	return urlRegex.MatchString(url)
}

// getValidationMessage returns a human-readable validation message.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	case "max_duration":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed validation", e.Field())
	}
}

// Global validator instance.
var (
	globalValidator *Validator
	validatorOnce   sync.Once
)

// GetValidator returns the global validator instance.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		var err error
		globalValidator, err = NewValidator()
		if err != nil {
			panic(fmt.Sprintf("failed to create global validator: %v", err))
		}
	})
	return globalValidator
}

// ValidateConfiguration validates a configuration using the global validator.
func ValidateConfiguration(config *Config) error {
	return GetValidator().ValidateConfig(config)
}
