package utils

import (
	stdErrors "errors"
	"log/slog"
	"net/http"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ParseAndValidate decodes the JSON body into dest and runs struct validation,
// writing the error envelope itself when either step fails.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(w, r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("endpoint", r.URL.Path), slog.String("error", err.Error()))

		message := "Invalid request body"
		switch {
		case stdErrors.Is(err, ErrEmptyBody):
			message = "Request body cannot be empty"
		case stdErrors.Is(err, ErrBodyTooLarge):
			message = "Request body is too large"
		}

		response.Error(w, appErrors.BadRequestError(message).WithError(err))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		slog.Warn("Validation failed", slog.String("error", err.Error()))

		var validationErrs validator.ValidationErrors
		if stdErrors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, appErrors.ValidationError("Invalid input data").WithError(err))
		return false
	}

	return true

}
