package normalizer

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Validation errors.
var (
	ErrEmptyYear   = errors.New("survey year has no rows or no columns")
	ErrInvalidYear = errors.New("survey year out of range")
	ErrBrokenFrame = errors.New("survey frame failed to load")
)

// Year bounds accepted by the validator.
const (
	MinYear = 2011
	MaxYear = 2100
)

// Validator handles data validation.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks that a loaded survey year can be normalized.
func (v *Validator) Validate(year int, df dataframe.DataFrame) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	if df.Err != nil {
		return fmt.Errorf("%w: %w", ErrBrokenFrame, df.Err)
	}

	if df.Nrow() == 0 || df.Ncol() == 0 {
		return fmt.Errorf("%w: %d", ErrEmptyYear, year)
	}

	return nil
}
