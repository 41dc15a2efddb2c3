// Package validation registers the request validators on gin's binding engine.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/planning"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom tags once per process:
//
//	isodate        ISO-8601 date or timestamp
//	orderstatus    one of models.OrderStatuses
//	orderpriority  one of models.OrderPriorities
//	techstatus     one of models.TechnicianStatuses
//	notbefore=F    date not earlier than the date in sibling field F
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags on v
func RegisterOn(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"isodate":       isoDate,
		"orderstatus":   oneOf(models.OrderStatuses),
		"orderpriority": oneOf(models.OrderPriorities),
		"techstatus":    oneOf(models.TechnicianStatuses),
		"notbefore":     notBefore,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isoDate(fl validator.FieldLevel) bool {
	value, ok := stringOf(fl.Field())
	if !ok {
		return false
	}
	// blank clears the date on update
	if strings.TrimSpace(value) == "" {
		return true
	}
	_, valid := planning.ParseDate(value)
	return valid
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := stringOf(fl.Field())
		if !ok {
			return false
		}
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// notBefore passes when either date is missing or unparsable; isodate
// reports the malformed one.
func notBefore(fl validator.FieldLevel) bool {
	end, ok := stringOf(fl.Field())
	if !ok {
		return true
	}
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return true
	}
	start, ok := stringOf(parent.FieldByName(fl.Param()))
	if !ok {
		return true
	}

	endDate, okEnd := planning.ParseDate(end)
	startDate, okStart := planning.ParseDate(start)
	if !okEnd || !okStart {
		return true
	}
	return !endDate.Before(startDate)
}

func stringOf(field reflect.Value) (string, bool) {
	for field.IsValid() && (field.Kind() == reflect.Ptr || field.Kind() == reflect.Interface) {
		if field.IsNil() {
			return "", false
		}
		field = field.Elem()
	}
	if !field.IsValid() || field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}
