package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"talkboard/internal/domain"
)

var validate = validator.New()

// validateInput runs struct-tag validation on a command object and maps
// failures onto the domain's invalid-input error.
func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
