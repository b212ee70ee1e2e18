package controller

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
)

// RegisterValidators adds the review binding tags to gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("reviewable", func(fl validator.FieldLevel) bool {
		_, ok := model.NormalizeReviewableType(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("vote", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseVoteToken(fl.Field().String())
		return ok
	})
}

var fieldMessages = map[string]string{
	"required":   "is required",
	"email":      "must be a valid email",
	"min":        "is too short",
	"max":        "is too long",
	"reviewable": "must be destination, activity or accommodation",
	"vote":       `must be "up", "down" or "remove"`,
}

// respondBindError reports binding failures per field when the validator
// produced them, and as a generic 400 otherwise.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed request body")
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields[fe.Field()] = msg
	}
	apperrors.RespondWithValidationError(c, fields)
}
