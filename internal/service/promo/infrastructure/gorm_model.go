package infrastructure

import (
	"time"
)

// PromoModel 对应数据库中的 promos 表
type PromoModel struct {
	ID          int64  `gorm:"primaryKey"`
	Slug        string `gorm:"uniqueIndex;size:150"`
	Title       string `gorm:"size:255"`
	ChannelSlug string `gorm:"index;size:150"`

	Headline    string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	Rules       string `gorm:"type:text"`
	Result      string `gorm:"type:text"`
	DisplayOrder int   `gorm:"column:display_order;default:0"`

	DateAvailable *time.Time `gorm:"index"`
	DateEnd       *time.Time `gorm:"index"`

	FormType string `gorm:"size:20;default:text"`

	Published             bool `gorm:"index;default:false"`
	DisplayAnswers        bool `gorm:"default:true"`
	DisplayWinners        bool `gorm:"default:false"`
	CountdownEnabled      bool `gorm:"default:true"`
	SendConfirmationEmail bool `gorm:"default:false"`

	ConfirmationEmailTxt     string `gorm:"type:text"`
	ConfirmationEmailHTML    string `gorm:"type:text"`
	ConfirmationEmailAddress string `gorm:"size:255"`

	EntryRule string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PromoModel) TableName() string {
	return "promos"
}

// AnswerModel 对应数据库中的 promo_answers 表。
// (promo_id, participant_id) 上的唯一键是"一人一票"不变式的最终防线，
// 并发的重复投稿在这里被数据库拒绝。
type AnswerModel struct {
	ID            int64  `gorm:"primaryKey"`
	PromoID       int64  `gorm:"uniqueIndex:uk_promo_participant"`
	ParticipantID string `gorm:"uniqueIndex:uk_promo_participant;size:64"`
	Email         string `gorm:"size:255"`

	Answer    string `gorm:"type:text"`
	AnswerURL string `gorm:"size:2048"`
	FileRef   string `gorm:"size:512"`

	PublishFile bool `gorm:"default:false"`
	Published   bool `gorm:"index;default:true"`
	IsWinner    bool `gorm:"index;default:false"`

	DateInsert time.Time `gorm:"autoCreateTime"`
	DateUpdate time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定 GORM 应该使用的表名
func (AnswerModel) TableName() string {
	return "promo_answers"
}
