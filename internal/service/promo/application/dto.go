package application

import (
	"time"

	"promos/internal/service/promo/domain"
)

// ParticipantInfo 是请求中携带的参与者身份（由上游网关完成认证）。
type ParticipantInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Birthday string `json:"birthday,omitempty"` // YYYY-MM-DD，可为空
}

// ToDomain 转换为领域参与者对象。生日格式非法时按未采集处理。
func (p ParticipantInfo) ToDomain() domain.Participant {
	participant := domain.Participant{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
	}
	if p.Birthday != "" {
		if t, err := time.Parse("2006-01-02", p.Birthday); err == nil {
			participant.Birthday = t
		}
	}
	return participant
}

// SubmitAnswerRequest 是投稿接口的请求体。
type SubmitAnswerRequest struct {
	PromoSlug   string          `json:"promo_slug"`
	Participant ParticipantInfo `json:"participant"`

	Text        string `json:"text,omitempty"`
	URL         string `json:"url,omitempty"`
	FileName    string `json:"file_name,omitempty"` // 已上传文件的原始文件名
	PublishFile bool   `json:"publish_file,omitempty"`

	Agree bool `json:"agree"`
}

// SubmitAnswerResponse 是投稿成功的响应体。
type SubmitAnswerResponse struct {
	AnswerID   int64  `json:"answer_id"`
	PromoSlug  string `json:"promo_slug"`
	Status     string `json:"status"`
	DateInsert string `json:"date_insert"`
}

// PromoSummary 是列表页使用的活动摘要。
type PromoSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ChannelSlug string `json:"channel_slug,omitempty"`
	Headline    string `json:"headline,omitempty"`
	Order       int    `json:"order"`
	IsOpen      bool   `json:"is_open"`
	DateEnd     string `json:"date_end,omitempty"`
}

// AnswerView 是对外展示的答案视图。
type AnswerView struct {
	ID          int64  `json:"id"`
	Text        string `json:"text,omitempty"`
	URL         string `json:"url,omitempty"`
	FileDisplay string `json:"file_display,omitempty"`
	IsWinner    bool   `json:"is_winner"`
	DateInsert  string `json:"date_insert"`
}

// PromoDetailResponse 是详情页数据，供外部渲染服务消费。
type PromoDetailResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ChannelSlug string `json:"channel_slug,omitempty"`
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	Rules       string `json:"rules,omitempty"`
	Result      string `json:"result,omitempty"`
	FormType    string `json:"form_type"`

	IsOpen           bool  `json:"is_open"`
	CountdownSeconds int64 `json:"countdown_seconds,omitempty"`
	Answered         bool  `json:"answered"`

	Answers []AnswerView `json:"answers,omitempty"`
	Winners []AnswerView `json:"winners,omitempty"`

	// Templates 是渲染服务做模板回退搜索的候选列表，由接口层填充。
	Templates []string `json:"templates,omitempty"`
}

func toPromoSummary(p *domain.Promo, now time.Time) PromoSummary {
	s := PromoSummary{
		Slug:        p.Slug,
		Title:       p.Title,
		ChannelSlug: p.ChannelSlug,
		Headline:    p.Headline,
		Order:       p.Order,
		IsOpen:      p.IsOpenAt(now),
	}
	if p.DateEnd != nil {
		s.DateEnd = p.DateEnd.UTC().Format(time.RFC3339)
	}
	return s
}

func toAnswerView(a *domain.Answer) AnswerView {
	v := AnswerView{
		ID:         a.ID,
		Text:       a.Text,
		URL:        a.URL,
		IsWinner:   a.IsWinner,
		DateInsert: a.DateInsert.UTC().Format(time.RFC3339),
	}
	if a.ShowFile() {
		display, err := a.FileDisplay()
		if err == nil {
			v.FileDisplay = display
		}
	}
	return v
}
