// promo-service/internal/domain/answer.go
package domain

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Answer 是一个参与者针对某个活动提交的一份答案（报名记录）。
//
// 去重策略：同一 (PromoID, ParticipantID) 至多一条记录，无论 Published
// 与否——未发布的答案同样算"已参与"。该不变式由存储层唯一键兜底，
// 应用层的预检查和 EntryGuard 只是提前拦截的快路径。
type Answer struct {
	ID            int64
	PromoID       int64
	ParticipantID string
	Email         string

	// 内容字段，填哪些取决于所属活动的 FormType
	Text    string
	URL     string
	FileRef string

	PublishFile bool
	Published   bool
	IsWinner    bool

	DateInsert time.Time // 创建时写入一次，之后不可变
	DateUpdate time.Time
}

// 可内联展示缩略图的文件扩展名
var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "bmp": true, "gif": true,
}

// Filename 返回上传文件的基础文件名。
func (a *Answer) Filename() string {
	return path.Base(a.FileRef)
}

// FileDisplay 返回答案文件的展示 HTML：图片给缩略图，其他类型给链接。
// 没有文件时返回 ErrNoFile，调用方必须显式区分"没有文件"和"渲染失败"。
func (a *Answer) FileDisplay() (string, error) {
	if a.FileRef == "" {
		return "", ErrNoFile
	}
	name := a.Filename()
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if imageExtensions[ext] {
		return fmt.Sprintf(`<img width="100px" height="100px" src="%s" />`, a.FileRef), nil
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, a.FileRef, name), nil
}

// ShowFile 表示该答案的文件是否允许公开展示。
func (a *Answer) ShowFile() bool {
	return a.FileRef != "" && a.PublishFile
}

// NewFileRef 为上传文件生成存储引用，按天分目录，文件名用 UUID 防冲突。
// 形如 promos/2024/01/15/<uuid>-<slug>.jpg
func NewFileRef(promoSlug, originalName string, now time.Time) string {
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("promos/%s/%s-%s.%s",
		now.UTC().Format("2006/01/02"), uuid.New().String(), promoSlug, ext)
}
