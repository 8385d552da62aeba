package app

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
	val "github.com/go-playground/validator/v10"
)

// ValidError single field validation error // 单个字段校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 将所有错误合并为一个字符串
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 返回 字段 => 错误 的映射
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string)
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid binds request parameters and validates them, translating
// validator messages with the translator stored in the context by the lang middleware
// BindAndValid 绑定请求参数并校验，使用 lang 中间件放入上下文的翻译器翻译校验消息
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err != nil {
		t, _ := c.Get("trans")
		trans, _ := t.(ut.Translator)
		verrs, ok := err.(val.ValidationErrors)
		if !ok || trans == nil {
			errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
			return false, errs
		}

		for key, value := range verrs.Translate(trans) {
			errs = append(errs, &ValidError{
				Key:     key,
				Message: value,
			})
		}
		return false, errs
	}

	return true, nil
}
