// internal/pkg/mq/carrier.go
package mq

import (
	"github.com/segmentio/kafka-go"
)

// KafkaHeaderCarrier 将 kafka.Header 切片适配为 OTel 的 TextMapCarrier，
// 使追踪上下文可以随消息在服务间传递。
type KafkaHeaderCarrier []kafka.Header

// Get 返回指定 Key 的消息头值。
func (c *KafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set 写入（或覆盖）指定 Key 的消息头。
func (c *KafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

// Keys 返回所有消息头的 Key。
func (c *KafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
