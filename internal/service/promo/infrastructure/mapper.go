package infrastructure

import (
	"promos/internal/service/promo/domain"
)

// ToDomainPromo 将数据库模型转换为领域模型
func ToDomainPromo(model *PromoModel) *domain.Promo {
	if model == nil {
		return nil
	}
	return &domain.Promo{
		ID:          model.ID,
		Slug:        model.Slug,
		Title:       model.Title,
		ChannelSlug: model.ChannelSlug,

		Headline:    model.Headline,
		Description: model.Description,
		Rules:       model.Rules,
		Result:      model.Result,
		Order:       model.DisplayOrder,

		DateAvailable: model.DateAvailable,
		DateEnd:       model.DateEnd,

		FormType: domain.FormType(model.FormType),

		Published:             model.Published,
		DisplayAnswers:        model.DisplayAnswers,
		DisplayWinners:        model.DisplayWinners,
		CountdownEnabled:      model.CountdownEnabled,
		SendConfirmationEmail: model.SendConfirmationEmail,

		ConfirmationEmailTxt:     model.ConfirmationEmailTxt,
		ConfirmationEmailHTML:    model.ConfirmationEmailHTML,
		ConfirmationEmailAddress: model.ConfirmationEmailAddress,

		EntryRule: model.EntryRule,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// FromDomainPromo 将领域模型转换为数据库模型
func FromDomainPromo(promo *domain.Promo) *PromoModel {
	if promo == nil {
		return nil
	}
	return &PromoModel{
		ID:          promo.ID,
		Slug:        promo.Slug,
		Title:       promo.Title,
		ChannelSlug: promo.ChannelSlug,

		Headline:     promo.Headline,
		Description:  promo.Description,
		Rules:        promo.Rules,
		Result:       promo.Result,
		DisplayOrder: promo.Order,

		DateAvailable: promo.DateAvailable,
		DateEnd:       promo.DateEnd,

		FormType: string(promo.FormType),

		Published:             promo.Published,
		DisplayAnswers:        promo.DisplayAnswers,
		DisplayWinners:        promo.DisplayWinners,
		CountdownEnabled:      promo.CountdownEnabled,
		SendConfirmationEmail: promo.SendConfirmationEmail,

		ConfirmationEmailTxt:     promo.ConfirmationEmailTxt,
		ConfirmationEmailHTML:    promo.ConfirmationEmailHTML,
		ConfirmationEmailAddress: promo.ConfirmationEmailAddress,

		EntryRule: promo.EntryRule,

		CreatedAt: promo.CreatedAt,
		UpdatedAt: promo.UpdatedAt,
	}
}

// ToDomainAnswer 将数据库模型转换为领域模型
func ToDomainAnswer(model *AnswerModel) *domain.Answer {
	if model == nil {
		return nil
	}
	return &domain.Answer{
		ID:            model.ID,
		PromoID:       model.PromoID,
		ParticipantID: model.ParticipantID,
		Email:         model.Email,

		Text:    model.Answer,
		URL:     model.AnswerURL,
		FileRef: model.FileRef,

		PublishFile: model.PublishFile,
		Published:   model.Published,
		IsWinner:    model.IsWinner,

		DateInsert: model.DateInsert,
		DateUpdate: model.DateUpdate,
	}
}

// FromDomainAnswer 将领域模型转换为数据库模型
func FromDomainAnswer(answer *domain.Answer) *AnswerModel {
	if answer == nil {
		return nil
	}
	return &AnswerModel{
		ID:            answer.ID,
		PromoID:       answer.PromoID,
		ParticipantID: answer.ParticipantID,
		Email:         answer.Email,

		Answer:    answer.Text,
		AnswerURL: answer.URL,
		FileRef:   answer.FileRef,

		PublishFile: answer.PublishFile,
		Published:   answer.Published,
		IsWinner:    answer.IsWinner,

		DateInsert: answer.DateInsert,
		DateUpdate: answer.DateUpdate,
	}
}
