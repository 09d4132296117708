package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/benvon/card-collection/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("sort_option", validateSortOption); err != nil {
		panic(fmt.Sprintf("failed to register sort_option validator: %v", err))
	}
	if err := Validate.RegisterValidation("filter_logic", validateFilterLogic); err != nil {
		panic(fmt.Sprintf("failed to register filter_logic validator: %v", err))
	}
}

// validateSortOption validates that a string is a valid SortOption enum value
func validateSortOption(fl validator.FieldLevel) bool {
	return slices.Contains(models.SortOptions, models.SortOption(fl.Field().String()))
}

// validateFilterLogic validates that a string names one of the default filter types
func validateFilterLogic(fl validator.FieldLevel) bool {
	return ValidateFilterType(models.FilterType(fl.Field().String()), models.DefaultFilterTypes) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateSortOption validates a SortOption value
func ValidateSortOption(option models.SortOption) error {
	if slices.Contains(models.SortOptions, option) {
		return nil
	}
	names := make([]string, 0, len(models.SortOptions))
	for _, o := range models.SortOptions {
		names = append(names, string(o))
	}
	return models.NewConfigurationError("sort option", string(option),
		fmt.Sprintf("must be one of %s", strings.Join(names, ", ")))
}

// ValidateFilterType validates that filterType is one of the names in filterTypes
func ValidateFilterType(filterType models.FilterType, filterTypes models.FilterTypes) error {
	if filterTypes.And == "" || filterTypes.Or == "" || filterTypes.Xor == "" {
		return models.NewConfigurationError("filter types", "", "and, or, and xor names are all required")
	}
	if filterTypes.And == filterTypes.Or || filterTypes.And == filterTypes.Xor || filterTypes.Or == filterTypes.Xor {
		return models.NewConfigurationError("filter types", "", "names must be distinct")
	}
	switch filterType {
	case filterTypes.And, filterTypes.Or, filterTypes.Xor:
		return nil
	default:
		return models.NewConfigurationError("filter type", string(filterType),
			fmt.Sprintf("must be '%s', '%s', or '%s'", filterTypes.And, filterTypes.Or, filterTypes.Xor))
	}
}

// ValidateFilterDirective checks that every group in the directive has a key
// and no blank selections
func ValidateFilterDirective(directive models.FilterDirective) error {
	for key, selected := range directive {
		if strings.TrimSpace(key) == "" {
			return models.NewConfigurationError("filter directive", "", "group key must not be empty")
		}
		for _, value := range selected {
			if strings.TrimSpace(value) == "" {
				return models.NewConfigurationError("filter directive", key, "selected tag must not be empty")
			}
		}
	}
	return nil
}
