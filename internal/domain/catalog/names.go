package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/marketplace/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a shop, category or parameter name and converts it to
// Unicode NFC so that visually identical names share one row.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

func validateName(entity, name string, maxLen int) error {
	if name == "" {
		return shared.NewValidationError("VALIDATION_ERROR", entity+" name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxLen {
		return shared.NewValidationError("VALIDATION_ERROR", fmt.Sprintf("%s name cannot exceed %d characters", entity, maxLen))
	}
	return nil
}
