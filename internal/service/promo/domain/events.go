// promo-service/internal/domain/events.go
package domain

// ConfirmationRequested 是投稿成功后发往通知管道的领域事件。
// 通知是 fire-and-forget：投稿落库 happens-before 事件发送，
// 发送失败只记日志，绝不回滚已提交的投稿。
type ConfirmationRequested struct {
	PromoSlug string `json:"promo_slug"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	BodyTxt   string `json:"body_txt"`
	BodyHTML  string `json:"body_html"`
	From      string `json:"from"` // 为空时由投递端使用系统默认发件人
	To        string `json:"to"`
}
