package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"promos/internal/pkg/mq"
	"promos/internal/service/promo/domain"
)

// ConfirmationKafkaAdapter 实现了 port.ConfirmationProducer 接口。
// 投稿提交后向 promo-confirmations 主题发送一条事件，
// 由独立的 notification-service 消费并投递邮件。
type ConfirmationKafkaAdapter struct {
	writer *kafka.Writer
}

// NewConfirmationKafkaAdapter 创建一个新的确认事件生产者适配器。
func NewConfirmationKafkaAdapter(writer *kafka.Writer) *ConfirmationKafkaAdapter {
	return &ConfirmationKafkaAdapter{writer: writer}
}

// SendConfirmation 发送确认邮件请求事件。
// 消息以收件人地址作为 Key，同一参与者的事件保持分区有序。
func (a *ConfirmationKafkaAdapter) SendConfirmation(ctx context.Context, event *domain.ConfirmationRequested) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation event: %w", err)
	}

	// 调用通用的 mq.ProduceMessage，它会自动处理追踪上下文注入
	return mq.ProduceMessage(ctx, a.writer, []byte(event.To), eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *ConfirmationKafkaAdapter) Close() error {
	return a.writer.Close()
}
