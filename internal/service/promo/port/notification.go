package port

import (
	"context"

	"promos/internal/service/promo/domain"
)

// ConfirmationProducer 是确认邮件事件的出站端口。
// 实现必须是 best-effort：失败由调用方记日志，不得影响投稿结果。
type ConfirmationProducer interface {
	// SendConfirmation 发送一条确认邮件请求事件。
	SendConfirmation(ctx context.Context, event *domain.ConfirmationRequested) error
}
