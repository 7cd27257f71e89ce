package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// useJSONFieldNames makes validation errors report json names instead of Go field names
func useJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the body and turns binding failures into structured errors
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ve := &apperr.ValidationErrors{}
		for _, fe := range verrs {
			ve.Add(fe.Field(), describe(fe))
		}
		return ve.ToAppError()
	}
	return apperr.InvalidInput("invalid request body: " + err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

// parseDate reads a YYYY-MM-DD date at midnight in loc
func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, apperr.InvalidInput(fmt.Sprintf("invalid date format for %s: %s", field, value)).WithField(field, "expected YYYY-MM-DD")
	}
	return t, nil
}
