package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var setupValidator sync.Once

// registerValidation makes gin's validator report JSON field names and
// adds the notblank rule used by the request DTOs.
func registerValidation() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
	})
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field is not a valid e-mail address.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

// bindingProblems turns a ShouldBindJSON failure into "field: message"
// problems. Anything that is not a rule violation is reported against body.
func bindingProblems(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{"body: " + err.Error()}
	}

	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fe.Field()+": "+fieldMessage(fe))
	}
	return out
}

func (h *handlers) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		validationProblem(c, bindingProblems(err)...)
		return false
	}
	return true
}
