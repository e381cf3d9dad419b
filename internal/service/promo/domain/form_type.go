// promo-service/internal/domain/form_type.go
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// FormType 描述一个活动的报名表单需要哪些字段。
// 存储形态是 "|" 分隔的 token 集合，约定的取值与历史数据保持一致。
type FormType string

const (
	FormTypeNone          FormType = "none" // 仅报名，不需要任何内容
	FormTypeText          FormType = "text"
	FormTypeUpload        FormType = "upload"
	FormTypeURL           FormType = "url"
	FormTypeTextUpload    FormType = "text|upload"
	FormTypeTextURL       FormType = "text|url"
	FormTypeTextURLUpload FormType = "text|url|upload"
)

// FieldSet 是 FormType 解析后的字段集合。
type FieldSet struct {
	Text   bool
	Upload bool
	URL    bool
}

// None 为 true 表示这是一个纯报名活动，不要求任何内容。
func (f FieldSet) None() bool {
	return !f.Text && !f.Upload && !f.URL
}

// Fields 把 FormType 解析为字段集合。
// 遇到无法识别的 token 直接报 ErrConfiguration（fail closed），
// 而不是悄悄忽略——配置错误应该在录入时暴露，而不是放过所有投稿。
func (t FormType) Fields() (FieldSet, error) {
	var fs FieldSet
	if t == FormTypeNone {
		return fs, nil
	}
	for _, token := range strings.Split(string(t), "|") {
		switch token {
		case "text":
			fs.Text = true
		case "upload":
			fs.Upload = true
		case "url":
			fs.URL = true
		default:
			return FieldSet{}, errors.Wrapf(ErrConfiguration, "unknown form type token %q", token)
		}
	}
	return fs, nil
}
