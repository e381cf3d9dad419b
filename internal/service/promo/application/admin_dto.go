package application

import (
	"time"

	"promos/internal/service/promo/domain"
)

// PromoInput 是管理端创建/更新活动的请求体。
type PromoInput struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ChannelSlug string `json:"channel_slug,omitempty"`

	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	Rules       string `json:"rules,omitempty"`
	Result      string `json:"result,omitempty"`
	Order       int    `json:"order,omitempty"`

	DateAvailable string `json:"date_available,omitempty"` // RFC3339，为空表示"从此刻开始"
	DateEnd       string `json:"date_end,omitempty"`       // RFC3339，为空表示不设截止

	FormType string `json:"form_type"`

	Published             bool `json:"published"`
	DisplayAnswers        bool `json:"display_answers"`
	DisplayWinners        bool `json:"display_winners"`
	CountdownEnabled      bool `json:"countdown_enabled"`
	SendConfirmationEmail bool `json:"send_confirmation_email"`

	ConfirmationEmailTxt     string `json:"confirmation_email_txt,omitempty"`
	ConfirmationEmailHTML    string `json:"confirmation_email_html,omitempty"`
	ConfirmationEmailAddress string `json:"confirmation_email_address,omitempty"`

	EntryRule string `json:"entry_rule,omitempty"`
}

// AdminPromoView 是管理端的活动视图，带 is_open 等计算字段。
// 计算字段复用领域求值器，不在管理层重复业务规则。
type AdminPromoView struct {
	PromoInput
	ID        int64  `json:"id"`
	IsOpen    bool   `json:"is_open"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AdminAnswerView 是管理端的答案视图。
type AdminAnswerView struct {
	ID            int64  `json:"id"`
	PromoID       int64  `json:"promo_id"`
	ParticipantID string `json:"participant_id"`
	Email         string `json:"email"`
	Text          string `json:"text,omitempty"`
	URL           string `json:"url,omitempty"`
	FileRef       string `json:"file_ref,omitempty"`
	FileDisplay   string `json:"file_display,omitempty"`
	Published     bool   `json:"published"`
	IsWinner      bool   `json:"is_winner"`
	DateInsert    string `json:"date_insert"`
}

// ListAnswersRequest 是管理端答案查询的过滤条件。
type ListAnswersRequest struct {
	PromoSlug string
	Published *bool
	IsWinner  *bool
}

func (in *PromoInput) toDomain(existing *domain.Promo) (*domain.Promo, error) {
	promo := existing
	if promo == nil {
		promo = &domain.Promo{}
	}

	promo.Slug = in.Slug
	promo.Title = in.Title
	promo.ChannelSlug = in.ChannelSlug
	promo.Headline = in.Headline
	promo.Description = in.Description
	promo.Rules = in.Rules
	promo.Result = in.Result
	promo.Order = in.Order
	promo.FormType = domain.FormType(in.FormType)
	promo.Published = in.Published
	promo.DisplayAnswers = in.DisplayAnswers
	promo.DisplayWinners = in.DisplayWinners
	promo.CountdownEnabled = in.CountdownEnabled
	promo.SendConfirmationEmail = in.SendConfirmationEmail
	promo.ConfirmationEmailTxt = in.ConfirmationEmailTxt
	promo.ConfirmationEmailHTML = in.ConfirmationEmailHTML
	promo.ConfirmationEmailAddress = in.ConfirmationEmailAddress
	promo.EntryRule = in.EntryRule

	var err error
	if promo.DateAvailable, err = parseOptionalTime(in.DateAvailable); err != nil {
		return nil, err
	}
	if promo.DateEnd, err = parseOptionalTime(in.DateEnd); err != nil {
		return nil, err
	}
	return promo, nil
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toAdminPromoView(p *domain.Promo, now time.Time) AdminPromoView {
	view := AdminPromoView{
		PromoInput: PromoInput{
			Slug:                     p.Slug,
			Title:                    p.Title,
			ChannelSlug:              p.ChannelSlug,
			Headline:                 p.Headline,
			Description:              p.Description,
			Rules:                    p.Rules,
			Result:                   p.Result,
			Order:                    p.Order,
			FormType:                 string(p.FormType),
			Published:                p.Published,
			DisplayAnswers:           p.DisplayAnswers,
			DisplayWinners:           p.DisplayWinners,
			CountdownEnabled:         p.CountdownEnabled,
			SendConfirmationEmail:    p.SendConfirmationEmail,
			ConfirmationEmailTxt:     p.ConfirmationEmailTxt,
			ConfirmationEmailHTML:    p.ConfirmationEmailHTML,
			ConfirmationEmailAddress: p.ConfirmationEmailAddress,
			EntryRule:                p.EntryRule,
		},
		ID:        p.ID,
		IsOpen:    p.IsOpenAt(now),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.DateAvailable != nil {
		view.DateAvailable = p.DateAvailable.UTC().Format(time.RFC3339)
	}
	if p.DateEnd != nil {
		view.DateEnd = p.DateEnd.UTC().Format(time.RFC3339)
	}
	return view
}

func toAdminAnswerView(a *domain.Answer) AdminAnswerView {
	view := AdminAnswerView{
		ID:            a.ID,
		PromoID:       a.PromoID,
		ParticipantID: a.ParticipantID,
		Email:         a.Email,
		Text:          a.Text,
		URL:           a.URL,
		FileRef:       a.FileRef,
		Published:     a.Published,
		IsWinner:      a.IsWinner,
		DateInsert:    a.DateInsert.UTC().Format(time.RFC3339),
	}
	if display, err := a.FileDisplay(); err == nil {
		view.FileDisplay = display
	}
	return view
}
