// promo-service/internal/domain/promo.go
package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Promo 是一个有时间窗口的活动实体，是本服务的聚合根。
// 它是纯数据 + 纯函数：所有判定方法都不会修改实体本身，
// 窗口的"生效开始时间"在每次求值时计算，而不是写回存储。
type Promo struct {
	ID          int64
	Slug        string
	Title       string
	ChannelSlug string // 所属频道（可为空，表示不挂在任何频道下）

	Headline    string
	Description string
	Rules       string
	Result      string
	Order       int

	// 报名窗口。DateAvailable 为 nil 表示"从求值时刻开始"，
	// DateEnd 为 nil 表示不设截止。
	DateAvailable *time.Time
	DateEnd       *time.Time

	FormType FormType

	Published             bool
	DisplayAnswers        bool
	DisplayWinners        bool
	CountdownEnabled      bool
	SendConfirmationEmail bool

	// 确认邮件的覆盖项，为空时使用系统默认文案/发件人
	ConfirmationEmailTxt     string
	ConfirmationEmailHTML    string
	ConfirmationEmailAddress string

	// EntryRule 是一个可选的 CEL 表达式，对参与者属性做额外的准入判断。
	// 为空表示所有人可参与。
	EntryRule string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStart 返回窗口的生效开始时间。
// 未显式配置开始时间的活动视为"此刻开始"，每次求值重新计算，不落库。
func (p *Promo) EffectiveStart(now time.Time) time.Time {
	if p.DateAvailable == nil {
		return now
	}
	return *p.DateAvailable
}

// IsOpenAt 判断活动在 now 时刻是否开放报名。
// 窗口是闭区间 [EffectiveStart, DateEnd]；DateEnd 为 nil 时只看开始时间。
func (p *Promo) IsOpenAt(now time.Time) bool {
	start := p.EffectiveStart(now)
	if start.After(now) {
		return false
	}
	if p.DateEnd == nil {
		return true
	}
	return !now.After(*p.DateEnd)
}

// Countdown 返回距离截止的剩余时间。
// 未启用倒计时、未设截止或已过截止时返回 0。
func (p *Promo) Countdown(now time.Time) time.Duration {
	if !p.CountdownEnabled || p.DateEnd == nil {
		return 0
	}
	d := p.DateEnd.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Validate 校验实体是否可以落库。
// 截止早于开始的窗口永远不会开放，直接在写入口拒绝。
func (p *Promo) Validate() error {
	if strings.TrimSpace(p.Slug) == "" {
		return errors.Wrap(ErrConfiguration, "slug is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.Wrap(ErrConfiguration, "title is required")
	}
	if _, err := p.FormType.Fields(); err != nil {
		return err
	}
	if p.DateAvailable != nil && p.DateEnd != nil && p.DateEnd.Before(*p.DateAvailable) {
		return errors.Wrap(ErrConfiguration, "date_end is earlier than date_available")
	}
	return nil
}
