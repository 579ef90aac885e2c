package util

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
}
