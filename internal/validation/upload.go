package validation

import (
	"path/filepath"
	"strings"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
)

// ValidateUpload checks a statement upload before it is forwarded.
// Only password protected PDF statements are accepted.
func ValidateUpload(filename, password string) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.ErrEmptyFileName
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return apperrors.ErrInvalidFileType
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.ErrMissingPassword
	}
	return nil
}
