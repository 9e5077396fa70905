package normalizer

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Processor validates and normalizes one survey year.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process turns a raw survey export into the canonical column set for year.
func (p *Processor) Process(year int, raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	// 1. Validate the input data
	if err := p.validator.Validate(year, raw); err != nil {
		return raw, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Transform the data
	normalized, err := p.transformer.Transform(SchemaFor(year), raw)
	if err != nil {
		return raw, fmt.Errorf("transformation failed: %w", err)
	}

	return normalized, nil
}
