package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"promos/internal/pkg/logger"
	"promos/internal/service/promo/domain"
)

// AdminService 承载管理端用例：活动的增改查、答案的审核与评奖。
// 所有"是否开放"之类的计算字段都走领域求值器，这里不重复业务规则。
type AdminService struct {
	promoRepo  domain.PromoRepository
	answerRepo domain.AnswerRepository
	tracer     trace.Tracer
}

// NewAdminService 创建一个新的管理服务实例。
func NewAdminService(promoRepo domain.PromoRepository, answerRepo domain.AnswerRepository, tracer trace.Tracer) *AdminService {
	return &AdminService{
		promoRepo:  promoRepo,
		answerRepo: answerRepo,
		tracer:     tracer,
	}
}

// CreatePromo 创建活动。窗口倒置、未知 form type 等配置错误在这里拒绝。
func (s *AdminService) CreatePromo(ctx context.Context, in *PromoInput, now time.Time) (*AdminPromoView, error) {
	ctx, span := s.tracer.Start(ctx, "admin.CreatePromo")
	defer span.End()
	span.SetAttributes(attribute.String("promo.slug", in.Slug))

	promo, err := in.toDomain(nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(domain.ErrConfiguration, err.Error())
	}
	// 未显式给开始时间的活动，创建时落一个默认值。
	// 这是唯一允许写入默认开始时间的地方，求值路径永远不写。
	if promo.DateAvailable == nil {
		promo.DateAvailable = &now
	}
	if err := promo.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.promoRepo.Save(ctx, promo); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("promo", promo.Slug).Msg("promo created")

	view := toAdminPromoView(promo, now)
	return &view, nil
}

// UpdatePromo 更新活动，slug 定位，不存在时报 ErrPromoNotFound。
func (s *AdminService) UpdatePromo(ctx context.Context, slug string, in *PromoInput, now time.Time) (*AdminPromoView, error) {
	ctx, span := s.tracer.Start(ctx, "admin.UpdatePromo")
	defer span.End()
	span.SetAttributes(attribute.String("promo.slug", slug))

	existing, err := s.promoRepo.FindBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	promo, err := in.toDomain(existing)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(domain.ErrConfiguration, err.Error())
	}
	if err := promo.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.promoRepo.Save(ctx, promo); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("promo", promo.Slug).Msg("promo updated")

	view := toAdminPromoView(promo, now)
	return &view, nil
}

// ListPromos 返回全部活动（含未发布），带计算字段。
func (s *AdminService) ListPromos(ctx context.Context, now time.Time) ([]AdminPromoView, error) {
	ctx, span := s.tracer.Start(ctx, "admin.ListPromos")
	defer span.End()

	promos, err := s.promoRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	views := make([]AdminPromoView, 0, len(promos))
	for _, p := range promos {
		views = append(views, toAdminPromoView(p, now))
	}
	return views, nil
}

// GetPromo 返回单个活动的管理视图。
func (s *AdminService) GetPromo(ctx context.Context, slug string, now time.Time) (*AdminPromoView, error) {
	ctx, span := s.tracer.Start(ctx, "admin.GetPromo")
	defer span.End()
	span.SetAttributes(attribute.String("promo.slug", slug))

	promo, err := s.promoRepo.FindBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	view := toAdminPromoView(promo, now)
	return &view, nil
}

// ListAnswers 按活动查询答案，支持按发布/获奖状态过滤。
func (s *AdminService) ListAnswers(ctx context.Context, req *ListAnswersRequest) ([]AdminAnswerView, error) {
	ctx, span := s.tracer.Start(ctx, "admin.ListAnswers")
	defer span.End()
	span.SetAttributes(attribute.String("promo.slug", req.PromoSlug))

	promo, err := s.promoRepo.FindBySlug(ctx, req.PromoSlug)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	answers, err := s.answerRepo.FindByPromo(ctx, promo.ID, domain.AnswerFilter{
		Published: req.Published,
		IsWinner:  req.IsWinner,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	views := make([]AdminAnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, toAdminAnswerView(a))
	}
	return views, nil
}

// SetAnswerPublished 切换答案的发布状态。
func (s *AdminService) SetAnswerPublished(ctx context.Context, answerID int64, published bool) error {
	ctx, span := s.tracer.Start(ctx, "admin.SetAnswerPublished")
	defer span.End()
	span.SetAttributes(attribute.Int64("answer.id", answerID), attribute.Bool("published", published))

	if _, err := s.answerRepo.FindByID(ctx, answerID); err != nil {
		span.RecordError(err)
		return err
	}
	return s.answerRepo.SetPublished(ctx, answerID, published)
}

// SetAnswerWinner 标记/取消获奖。
func (s *AdminService) SetAnswerWinner(ctx context.Context, answerID int64, isWinner bool) error {
	ctx, span := s.tracer.Start(ctx, "admin.SetAnswerWinner")
	defer span.End()
	span.SetAttributes(attribute.Int64("answer.id", answerID), attribute.Bool("is_winner", isWinner))

	if _, err := s.answerRepo.FindByID(ctx, answerID); err != nil {
		span.RecordError(err)
		return err
	}
	return s.answerRepo.SetWinner(ctx, answerID, isWinner)
}
