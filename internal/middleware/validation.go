package middleware

import (
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/hospital-api/pkg/validator"
)

// SetupValidation installs the custom binding rules and makes request
// bodies with unknown fields fail to bind. Call it once before serving.
func SetupValidation() error {
	binding.EnableDecoderDisallowUnknownFields = true
	return validator.RegisterBinding()
}
