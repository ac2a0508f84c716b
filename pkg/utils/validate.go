package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator so handlers share one instance;
// the library caches struct metadata internally.
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce     sync.Once
	validatorInstance *Validator
)

// GetValidator returns the shared request validator.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{validate: validator.New()}
	})
	return validatorInstance
}

// Validate runs struct-tag validation on a request body.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
