package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the validate tags on a request payload. Cross-field
// rules stay in each type's Validate method.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
