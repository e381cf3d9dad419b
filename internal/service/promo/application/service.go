package application

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"promos/internal/pkg/logger"
	"promos/internal/service/promo/domain"
	"promos/internal/service/promo/port"
)

// PromoService 定义了活动服务面向参与者的所有业务用例。
type PromoService struct {
	promoRepo  domain.PromoRepository
	answerRepo domain.AnswerRepository
	guard      port.EntryGuard
	ruleEngine port.RuleEngine
	notifier   port.ConfirmationProducer
	tracer     trace.Tracer
}

// NewPromoService 创建一个新的活动服务实例。
func NewPromoService(
	promoRepo domain.PromoRepository,
	answerRepo domain.AnswerRepository,
	guard port.EntryGuard,
	ruleEngine port.RuleEngine,
	notifier port.ConfirmationProducer,
	tracer trace.Tracer,
) *PromoService {
	return &PromoService{
		promoRepo:  promoRepo,
		answerRepo: answerRepo,
		guard:      guard,
		ruleEngine: ruleEngine,
		notifier:   notifier,
		tracer:     tracer,
	}
}

// SubmitAnswer 是整个服务唯一有状态的多步用例：接收一份投稿，
// 判定接受/拒绝，落库，然后请求发送确认邮件。
//
// 落库 happens-before 通知发送；通知失败只记日志，不影响调用方结果。
func (s *PromoService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest, now time.Time) (*SubmitAnswerResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.SubmitAnswer")
	defer span.End()

	span.SetAttributes(
		attribute.String("promo.slug", req.PromoSlug),
		attribute.String("participant.id", req.Participant.ID),
	)

	// 1. 加载活动
	promo, err := s.promoRepo.FindBySlug(ctx, req.PromoSlug)
	if err != nil {
		span.RecordError(err)
		s.countRejection(err)
		return nil, err
	}

	// 2. 窗口 + 发布状态检查
	if !promo.Published || !promo.IsOpenAt(now) {
		submissionsTotal.WithLabelValues(resultRejectedClosed).Inc()
		span.AddEvent("Submission rejected: promo closed")
		return nil, domain.ErrPromoClosed
	}

	// 3. 重复报名预检查（快路径；真正的不变式由占位和唯一键保证）。
	// 已报名先于后续所有拒绝原因：重复投稿的参与者拿到的永远是"已报名"。
	entered, err := s.answerRepo.HasEntered(ctx, promo.ID, req.Participant.ID)
	if err != nil {
		span.RecordError(err)
		submissionsTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	if entered {
		submissionsTotal.WithLabelValues(resultRejectedDuplicate).Inc()
		return nil, domain.ErrAlreadyEntered
	}

	// 4. 必须同意活动规则
	if !req.Agree {
		submissionsTotal.WithLabelValues(resultRejectedRules).Inc()
		return nil, domain.ErrRulesNotAccepted
	}

	// 5. 按 FormType 校验内容完整性
	fields, err := promo.FormType.Fields()
	if err != nil {
		span.RecordError(err)
		submissionsTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	if !fields.None() && req.Text == "" && req.URL == "" && req.FileName == "" {
		submissionsTotal.WithLabelValues(resultRejectedIncomplete).Inc()
		return nil, domain.ErrIncompleteEntry
	}

	// 6. 可选的准入规则
	if promo.EntryRule != "" {
		participant := req.Participant.ToDomain()
		ok, err := s.ruleEngine.Evaluate(promo.EntryRule, participant.Fact(now))
		if err != nil {
			span.RecordError(err)
			submissionsTotal.WithLabelValues(resultError).Inc()
			return nil, err
		}
		if !ok {
			submissionsTotal.WithLabelValues(resultRejectedEligible).Inc()
			return nil, domain.ErrNotEligible
		}
	}

	// 7. 原子占位，堵住查重和插入之间的并发窗口
	claimed, err := s.guard.Claim(ctx, promo.Slug, req.Participant.ID)
	if err != nil {
		span.RecordError(err)
		submissionsTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	if !claimed {
		submissionsTotal.WithLabelValues(resultRejectedDuplicate).Inc()
		return nil, domain.ErrAlreadyEntered
	}

	// 8. 落库。唯一键冲突由仓储翻译为 ErrAlreadyEntered。
	answer := &domain.Answer{
		PromoID:       promo.ID,
		ParticipantID: req.Participant.ID,
		Email:         req.Participant.Email,
		Text:          req.Text,
		URL:           req.URL,
		PublishFile:   req.PublishFile,
		Published:     true,
		DateInsert:    now,
		DateUpdate:    now,
	}
	if req.FileName != "" {
		answer.FileRef = domain.NewFileRef(promo.Slug, req.FileName, now)
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrAlreadyEntered) {
			// 占位保留：该参与者确实已经报过名
			submissionsTotal.WithLabelValues(resultRejectedDuplicate).Inc()
			return nil, err
		}
		// 落库失败要释放占位，否则参与者会被永久卡在"已报名"
		if releaseErr := s.guard.Release(ctx, promo.Slug, req.Participant.ID); releaseErr != nil {
			logger.Ctx(ctx).Error().Err(releaseErr).
				Str("promo", promo.Slug).Str("participant", req.Participant.ID).
				Msg("failed to release entry claim after insert failure")
		}
		submissionsTotal.WithLabelValues(resultError).Inc()
		span.SetStatus(codes.Error, "failed to persist answer")
		return nil, err
	}

	submissionsTotal.WithLabelValues(resultAccepted).Inc()
	span.AddEvent("Answer accepted and persisted")
	logger.Ctx(ctx).Info().
		Str("promo", promo.Slug).Str("participant", req.Participant.ID).Int64("answer_id", answer.ID).
		Msg("answer accepted")

	// 9. fire-and-forget 的确认邮件
	if promo.SendConfirmationEmail {
		s.dispatchConfirmation(ctx, promo, req.Participant.Email)
	}

	return &SubmitAnswerResponse{
		AnswerID:   answer.ID,
		PromoSlug:  promo.Slug,
		Status:     "ACCEPTED",
		DateInsert: answer.DateInsert.UTC().Format(time.RFC3339),
	}, nil
}

// dispatchConfirmation 构造并发送确认邮件事件。
// 任何错误都只记日志和指标——投稿已经提交，不能因为通知失败回滚。
func (s *PromoService) dispatchConfirmation(ctx context.Context, promo *domain.Promo, to string) {
	ctx, span := s.tracer.Start(ctx, "service.dispatchConfirmation")
	defer span.End()

	defaultBody := fmt.Sprintf("Thank you! You are now inscribed to %s", promo.Title)

	event := &domain.ConfirmationRequested{
		PromoSlug: promo.Slug,
		Title:     promo.Title,
		Subject:   fmt.Sprintf("You are now registered for %s.", promo.Title),
		BodyTxt:   promo.ConfirmationEmailTxt,
		BodyHTML:  promo.ConfirmationEmailHTML,
		From:      promo.ConfirmationEmailAddress,
		To:        to,
	}
	if event.BodyTxt == "" {
		event.BodyTxt = defaultBody
	}
	if event.BodyHTML == "" {
		event.BodyHTML = defaultBody
	}

	if err := s.notifier.SendConfirmation(ctx, event); err != nil {
		confirmationProduceFailures.Inc()
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("promo", promo.Slug).Str("to", to).
			Msg("failed to produce confirmation event")
		return
	}
	confirmationsProduced.Inc()
	span.AddEvent("Confirmation event produced")
}

// ListOpenedPromos 返回当前开放报名中的活动。
func (s *PromoService) ListOpenedPromos(ctx context.Context, now time.Time) ([]PromoSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListOpenedPromos")
	defer span.End()

	promos, err := s.promoRepo.FindOpened(ctx, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toSummaries(promos, now), nil
}

// ListClosedPromos 返回已截止的活动（结果页用）。
func (s *PromoService) ListClosedPromos(ctx context.Context, now time.Time) ([]PromoSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListClosedPromos")
	defer span.End()

	promos, err := s.promoRepo.FindClosed(ctx, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toSummaries(promos, now), nil
}

// ListPromosByChannel 返回某个频道下的活动。
func (s *PromoService) ListPromosByChannel(ctx context.Context, channelSlug string, now time.Time) ([]PromoSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListPromosByChannel")
	defer span.End()
	span.SetAttributes(attribute.String("channel.slug", channelSlug))

	promos, err := s.promoRepo.FindByChannel(ctx, channelSlug, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toSummaries(promos, now), nil
}

// GetPromoDetail 组装详情页数据：活动内容、已发布答案、获奖名单、
// 参与者是否已报名。preview 为 true 时（管理员预览）放开可见性过滤。
func (s *PromoService) GetPromoDetail(ctx context.Context, slug, participantID string, now time.Time, preview bool) (*PromoDetailResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetPromoDetail")
	defer span.End()
	span.SetAttributes(attribute.String("promo.slug", slug))

	promo, err := s.promoRepo.FindBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 非预览模式下，未发布或未开始的活动对外不存在
	if !preview {
		if !promo.Published || promo.EffectiveStart(now).After(now) {
			return nil, domain.ErrPromoNotFound
		}
	}

	resp := &PromoDetailResponse{
		Slug:        promo.Slug,
		Title:       promo.Title,
		ChannelSlug: promo.ChannelSlug,
		Headline:    promo.Headline,
		Description: promo.Description,
		Rules:       promo.Rules,
		Result:      promo.Result,
		FormType:    string(promo.FormType),
		IsOpen:      promo.IsOpenAt(now),
	}
	if d := promo.Countdown(now); d > 0 {
		resp.CountdownSeconds = int64(d.Seconds())
	}

	if promo.DisplayAnswers {
		answers, err := s.answerRepo.FindPublished(ctx, promo.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, a := range answers {
			resp.Answers = append(resp.Answers, toAnswerView(a))
		}
	}

	if promo.DisplayWinners {
		winners, err := s.answerRepo.FindWinners(ctx, promo.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, w := range winners {
			resp.Winners = append(resp.Winners, toAnswerView(w))
		}
	}

	if participantID != "" {
		answered, err := s.answerRepo.HasEntered(ctx, promo.ID, participantID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		resp.Answered = answered
	}

	return resp, nil
}

func toSummaries(promos []*domain.Promo, now time.Time) []PromoSummary {
	summaries := make([]PromoSummary, 0, len(promos))
	for _, p := range promos {
		summaries = append(summaries, toPromoSummary(p, now))
	}
	return summaries
}

// countRejection 把加载失败计入指标（NotFound 之外的都算 error）。
func (s *PromoService) countRejection(err error) {
	if errors.Is(err, domain.ErrPromoNotFound) {
		return
	}
	submissionsTotal.WithLabelValues(resultError).Inc()
}
