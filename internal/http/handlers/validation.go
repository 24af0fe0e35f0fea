package handlers

import (
	"sync"

	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs.
// NewHandler calls it; repeated calls are no-ops.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Error("binding validator is not validator/v10; notblank tag unavailable")
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			logger.Error("register notblank validator", "error", err)
		}
	})
}
