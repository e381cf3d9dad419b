package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"promos/internal/service/promo/domain"
)

// MySQL 的唯一键冲突错误码
const mysqlErrDuplicateEntry = 1062

// GormPromoRepository 是 PromoRepository 的 GORM 实现
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository 创建一个新的 GORM 仓储实例
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// Save 落库一个活动（ID 为零时创建，否则整体更新）
func (r *GormPromoRepository) Save(ctx context.Context, promo *domain.Promo) error {
	model := FromDomainPromo(promo)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	// 回填数据库生成的字段
	promo.ID = model.ID
	promo.CreatedAt = model.CreatedAt
	promo.UpdatedAt = model.UpdatedAt
	return nil
}

// FindBySlug 根据 slug 查找活动
func (r *GormPromoRepository) FindBySlug(ctx context.Context, slug string) (*domain.Promo, error) {
	var model PromoModel
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, err
	}
	return ToDomainPromo(&model), nil
}

// FindOpened 返回 now 时刻开放中的已发布活动。
// date_available 为 NULL 表示"从求值时刻开始"，视为已开始。
func (r *GormPromoRepository) FindOpened(ctx context.Context, now time.Time) ([]*domain.Promo, error) {
	var models []*PromoModel
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Where("date_available IS NULL OR date_available <= ?", now).
		Where("date_end IS NULL OR date_end >= ?", now).
		Order("display_order ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainPromos(models), nil
}

// FindClosed 返回已开始且已截止的已发布活动
func (r *GormPromoRepository) FindClosed(ctx context.Context, now time.Time) ([]*domain.Promo, error) {
	var models []*PromoModel
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Where("date_available IS NULL OR date_available <= ?", now).
		Where("date_end IS NOT NULL AND date_end < ?", now).
		Order("display_order ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainPromos(models), nil
}

// FindByChannel 返回某频道下已发布且已开始的活动
func (r *GormPromoRepository) FindByChannel(ctx context.Context, channelSlug string, now time.Time) ([]*domain.Promo, error) {
	var models []*PromoModel
	err := r.db.WithContext(ctx).
		Where("channel_slug = ?", channelSlug).
		Where("published = ?", true).
		Where("date_available IS NULL OR date_available <= ?", now).
		Order("display_order ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainPromos(models), nil
}

// FindAll 返回全部活动（管理端用）
func (r *GormPromoRepository) FindAll(ctx context.Context) ([]*domain.Promo, error) {
	var models []*PromoModel
	if err := r.db.WithContext(ctx).Order("display_order ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainPromos(models), nil
}

func toDomainPromos(models []*PromoModel) []*domain.Promo {
	promos := make([]*domain.Promo, len(models))
	for i, m := range models {
		promos[i] = ToDomainPromo(m)
	}
	return promos
}

// GormAnswerRepository 是 AnswerRepository 的 GORM 实现
type GormAnswerRepository struct {
	db *gorm.DB
}

// NewGormAnswerRepository 创建一个新的 GORM 仓储实例
func NewGormAnswerRepository(db *gorm.DB) *GormAnswerRepository {
	return &GormAnswerRepository{db: db}
}

// Create 插入一条新答案。
// (promo_id, participant_id) 唯一键冲突翻译为领域错误 ErrAlreadyEntered，
// 存储细节不外泄给调用方。
func (r *GormAnswerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	model := FromDomainAnswer(answer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return domain.ErrAlreadyEntered
		}
		return err
	}
	answer.ID = model.ID
	answer.DateInsert = model.DateInsert
	answer.DateUpdate = model.DateUpdate
	return nil
}

// HasEntered 判断参与者是否已有记录（不论是否已发布）
func (r *GormAnswerRepository) HasEntered(ctx context.Context, promoID int64, participantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AnswerModel{}).
		Where("promo_id = ? AND participant_id = ?", promoID, participantID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindPublished 返回某活动已发布的答案，倒序
func (r *GormAnswerRepository) FindPublished(ctx context.Context, promoID int64) ([]*domain.Answer, error) {
	var models []*AnswerModel
	err := r.db.WithContext(ctx).
		Where("promo_id = ? AND published = ?", promoID, true).
		Order("date_insert DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainAnswers(models), nil
}

// FindWinners 返回某活动已发布且获奖的答案
func (r *GormAnswerRepository) FindWinners(ctx context.Context, promoID int64) ([]*domain.Answer, error) {
	var models []*AnswerModel
	err := r.db.WithContext(ctx).
		Where("promo_id = ? AND published = ? AND is_winner = ?", promoID, true, true).
		Order("date_insert DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainAnswers(models), nil
}

// FindByPromo 管理端查询，支持按状态过滤
func (r *GormAnswerRepository) FindByPromo(ctx context.Context, promoID int64, filter domain.AnswerFilter) ([]*domain.Answer, error) {
	query := r.db.WithContext(ctx).Where("promo_id = ?", promoID)
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if filter.IsWinner != nil {
		query = query.Where("is_winner = ?", *filter.IsWinner)
	}

	var models []*AnswerModel
	if err := query.Order("date_insert DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainAnswers(models), nil
}

// FindByID 根据 ID 查找答案
func (r *GormAnswerRepository) FindByID(ctx context.Context, id int64) (*domain.Answer, error) {
	var model AnswerModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, err
	}
	return ToDomainAnswer(&model), nil
}

// SetPublished 切换发布状态
func (r *GormAnswerRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	return r.db.WithContext(ctx).Model(&AnswerModel{}).
		Where("id = ?", id).
		Update("published", published).Error
}

// SetWinner 标记/取消获奖
func (r *GormAnswerRepository) SetWinner(ctx context.Context, id int64, isWinner bool) error {
	return r.db.WithContext(ctx).Model(&AnswerModel{}).
		Where("id = ?", id).
		Update("is_winner", isWinner).Error
}

func toDomainAnswers(models []*AnswerModel) []*domain.Answer {
	answers := make([]*domain.Answer, len(models))
	for i, m := range models {
		answers[i] = ToDomainAnswer(m)
	}
	return answers
}
