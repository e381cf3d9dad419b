// cmd/notification-service/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gopkg.in/gomail.v2"

	"promos/internal/pkg/bootstrap"
	"promos/internal/pkg/logger"
	"promos/internal/pkg/mq"
	"promos/internal/pkg/tracing"
	"promos/internal/service/promo/domain"
)

const (
	serviceName = "notification-service"
	metricsAddr = ":8088"
	// 投递端的并发度；确认邮件量不大，几个 worker 足够
	deliveryWorkers = 4
)

var (
	tracer = otel.Tracer(serviceName)

	deliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promos_confirmation_deliveries_total",
		Help: "Total number of confirmation emails delivered.",
	})
	deliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promos_confirmation_delivery_failures_total",
		Help: "Total number of confirmation email delivery failures.",
	})
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.L().Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.ConfirmationTopic, cfg.Infra.Kafka.ConsumerGroup)
	defer reader.Close()

	dialer := gomail.NewDialer(cfg.Infra.SMTP.Host, cfg.Infra.SMTP.Port, cfg.Infra.SMTP.Username, cfg.Infra.SMTP.Password)
	sender := &mailSender{dialer: dialer, defaultFrom: cfg.Infra.SMTP.DefaultFrom}

	// 消费者进程不对外提供业务接口，单独起一个小 HTTP 服务暴露指标
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
		}
	}()
	defer metricsServer.Shutdown(context.Background())

	// 监听退出信号，收到后取消上下文，让消费循环优雅收尾
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.L().Info().
		Str("topic", cfg.Infra.Kafka.ConfirmationTopic).
		Str("group", cfg.Infra.Kafka.ConsumerGroup).
		Msg("notification service started as kafka consumer")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < deliveryWorkers; i++ {
		g.Go(func() error {
			return consumeLoop(ctx, reader, sender)
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.L().Error().Err(err).Msg("consumer stopped with error")
	}
	logger.L().Info().Msg("notification service shut down")
}

// consumeLoop 逐条拉取消息，处理完成后手动提交位点。
// 投递失败只记日志并照常提交：确认邮件是 fire-and-forget，不做重试堆积。
func consumeLoop(ctx context.Context, reader *kafka.Reader, sender *mailSender) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Error().Err(err).Msg("could not fetch message")
			continue
		}

		processConfirmation(ctx, msg, sender)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("failed to commit offset")
		}
	}
}

// processConfirmation 处理从 Kafka 收到的单条确认邮件请求
func processConfirmation(ctx context.Context, msg kafka.Message, sender *mailSender) {
	// 1. 从消息头中提取追踪上下文，接到上游 promo-service 的链路上
	ctx = mq.ExtractTraceContext(ctx, msg.Headers)
	if !trace.SpanContextFromContext(ctx).IsValid() {
		logger.L().Warn().Msg("no valid trace context found in message headers")
	}

	// 2. 基于提取的上下文创建消费者类型的 Span
	spanOpts := []trace.SpanStartOption{
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
			attribute.String("messaging.kafka.message.key", string(msg.Key)),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	}
	ctx, span := tracer.Start(ctx, "notification-service.ProcessConfirmation", spanOpts...)
	defer span.End()

	var event domain.ConfirmationRequested
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal confirmation event")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attribute.String("promo.slug", event.PromoSlug))

	if err := sender.Send(event); err != nil {
		deliveryFailuresTotal.Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("promo_slug", event.PromoSlug).
			Str("to", event.To).
			Msg("failed to deliver confirmation email")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	deliveriesTotal.Inc()
	span.AddEvent("Confirmation email sent")
	logger.Ctx(ctx).Info().
		Str("promo_slug", event.PromoSlug).
		Str("to", event.To).
		Msg("confirmation email delivered")
}

// mailSender 通过 SMTP 投递纯文本 + HTML 双格式的确认邮件。
type mailSender struct {
	dialer      *gomail.Dialer
	defaultFrom string
}

func (s *mailSender) Send(event domain.ConfirmationRequested) error {
	from := event.From
	if from == "" {
		from = s.defaultFrom
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", event.To)
	m.SetHeader("Subject", event.Subject)
	m.SetBody("text/plain", event.BodyTxt)
	if event.BodyHTML != "" {
		m.AddAlternative("text/html", event.BodyHTML)
	}

	return s.dialer.DialAndSend(m)
}
