package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"promos/internal/service/promo/domain"
)

// ---- 内存版端口实现，仅测试用 ----

type fakePromoRepo struct {
	promos map[string]*domain.Promo
}

func (r *fakePromoRepo) Save(ctx context.Context, p *domain.Promo) error {
	if r.promos == nil {
		r.promos = make(map[string]*domain.Promo)
	}
	if p.ID == 0 {
		p.ID = int64(len(r.promos) + 1)
	}
	r.promos[p.Slug] = p
	return nil
}

func (r *fakePromoRepo) FindBySlug(ctx context.Context, slug string) (*domain.Promo, error) {
	p, ok := r.promos[slug]
	if !ok {
		return nil, domain.ErrPromoNotFound
	}
	return p, nil
}

func (r *fakePromoRepo) FindOpened(ctx context.Context, now time.Time) ([]*domain.Promo, error) {
	var out []*domain.Promo
	for _, p := range r.promos {
		if p.Published && p.IsOpenAt(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) FindClosed(ctx context.Context, now time.Time) ([]*domain.Promo, error) {
	var out []*domain.Promo
	for _, p := range r.promos {
		if p.Published && !p.IsOpenAt(now) && !p.EffectiveStart(now).After(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) FindByChannel(ctx context.Context, channelSlug string, now time.Time) ([]*domain.Promo, error) {
	var out []*domain.Promo
	for _, p := range r.promos {
		if p.Published && p.ChannelSlug == channelSlug {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) FindAll(ctx context.Context) ([]*domain.Promo, error) {
	var out []*domain.Promo
	for _, p := range r.promos {
		out = append(out, p)
	}
	return out, nil
}

type fakeAnswerRepo struct {
	answers   []*domain.Answer
	createErr error
	nextID    int64
}

func (r *fakeAnswerRepo) Create(ctx context.Context, a *domain.Answer) error {
	if r.createErr != nil {
		return r.createErr
	}
	// 与存储层唯一键同语义：无论 Published 与否都算重复
	for _, existing := range r.answers {
		if existing.PromoID == a.PromoID && existing.ParticipantID == a.ParticipantID {
			return domain.ErrAlreadyEntered
		}
	}
	r.nextID++
	a.ID = r.nextID
	r.answers = append(r.answers, a)
	return nil
}

func (r *fakeAnswerRepo) HasEntered(ctx context.Context, promoID int64, participantID string) (bool, error) {
	for _, a := range r.answers {
		if a.PromoID == promoID && a.ParticipantID == participantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAnswerRepo) FindPublished(ctx context.Context, promoID int64) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range r.answers {
		if a.PromoID == promoID && a.Published {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindWinners(ctx context.Context, promoID int64) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range r.answers {
		if a.PromoID == promoID && a.Published && a.IsWinner {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindByPromo(ctx context.Context, promoID int64, filter domain.AnswerFilter) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range r.answers {
		if a.PromoID != promoID {
			continue
		}
		if filter.Published != nil && a.Published != *filter.Published {
			continue
		}
		if filter.IsWinner != nil && a.IsWinner != *filter.IsWinner {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindByID(ctx context.Context, id int64) (*domain.Answer, error) {
	for _, a := range r.answers {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrPromoNotFound
}

func (r *fakeAnswerRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	for _, a := range r.answers {
		if a.ID == id {
			a.Published = published
			return nil
		}
	}
	return domain.ErrPromoNotFound
}

func (r *fakeAnswerRepo) SetWinner(ctx context.Context, id int64, isWinner bool) error {
	for _, a := range r.answers {
		if a.ID == id {
			a.IsWinner = isWinner
			return nil
		}
	}
	return domain.ErrPromoNotFound
}

type fakeGuard struct {
	claimResult bool
	claimErr    error
	claims      int
	releases    int
}

func (g *fakeGuard) Claim(ctx context.Context, promoSlug, participantID string) (bool, error) {
	g.claims++
	if g.claimErr != nil {
		return false, g.claimErr
	}
	return g.claimResult, nil
}

func (g *fakeGuard) Release(ctx context.Context, promoSlug, participantID string) error {
	g.releases++
	return nil
}

type fakeRuleEngine struct {
	result bool
	err    error
}

func (e *fakeRuleEngine) Evaluate(rule string, fact domain.Fact) (bool, error) {
	return e.result, e.err
}

type fakeNotifier struct {
	events  []*domain.ConfirmationRequested
	sendErr error
}

func (n *fakeNotifier) SendConfirmation(ctx context.Context, event *domain.ConfirmationRequested) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.events = append(n.events, event)
	return nil
}

// ---- 测试脚手架 ----

type serviceFixture struct {
	promoRepo  *fakePromoRepo
	answerRepo *fakeAnswerRepo
	guard      *fakeGuard
	ruleEngine *fakeRuleEngine
	notifier   *fakeNotifier
	service    *PromoService
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		promoRepo:  &fakePromoRepo{promos: make(map[string]*domain.Promo)},
		answerRepo: &fakeAnswerRepo{},
		guard:      &fakeGuard{claimResult: true},
		ruleEngine: &fakeRuleEngine{result: true},
		notifier:   &fakeNotifier{},
	}
	f.service = NewPromoService(f.promoRepo, f.answerRepo, f.guard, f.ruleEngine, f.notifier, otel.Tracer("test"))
	return f
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func openPromo(slug string) *domain.Promo {
	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	return &domain.Promo{
		ID:            1,
		Slug:          slug,
		Title:         "Summer Contest",
		FormType:      domain.FormTypeText,
		Published:     true,
		DateAvailable: &start,
		DateEnd:       &end,
	}
}

func submitReq(slug string) *SubmitAnswerRequest {
	return &SubmitAnswerRequest{
		PromoSlug:   slug,
		Participant: ParticipantInfo{ID: "u1", Name: "Ana", Email: "ana@example.com"},
		Text:        "my answer",
		Agree:       true,
	}
}

// ---- SubmitAnswer ----

func TestSubmitAnswerAccepted(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")

	resp, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if resp.Status != "ACCEPTED" || resp.AnswerID == 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(f.answerRepo.answers) != 1 {
		t.Fatalf("expected 1 persisted answer, got %d", len(f.answerRepo.answers))
	}
	a := f.answerRepo.answers[0]
	if a.ParticipantID != "u1" || a.Text != "my answer" || !a.Published {
		t.Errorf("unexpected persisted answer: %+v", a)
	}
}

func TestSubmitAnswerUnknownPromo(t *testing.T) {
	f := newFixture()
	_, err := f.service.SubmitAnswer(context.Background(), submitReq("nope"), testNow)
	if !errors.Is(err, domain.ErrPromoNotFound) {
		t.Errorf("SubmitAnswer() error = %v, want ErrPromoNotFound", err)
	}
}

func TestSubmitAnswerClosedPromo(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(p *domain.Promo)
	}{
		{"unpublished", func(p *domain.Promo) { p.Published = false }},
		{"not started", func(p *domain.Promo) {
			start := testNow.Add(time.Hour)
			p.DateAvailable = &start
		}},
		{"past deadline", func(p *domain.Promo) {
			end := testNow.Add(-time.Minute)
			p.DateEnd = &end
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openPromo("summer")
			tt.mutate(p)
			f.promoRepo.promos["summer"] = p

			_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
			if !errors.Is(err, domain.ErrPromoClosed) {
				t.Errorf("SubmitAnswer() error = %v, want ErrPromoClosed", err)
			}
		})
	}
}

func TestSubmitAnswerRulesNotAccepted(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")

	req := submitReq("summer")
	req.Agree = false
	_, err := f.service.SubmitAnswer(context.Background(), req, testNow)
	if !errors.Is(err, domain.ErrRulesNotAccepted) {
		t.Errorf("SubmitAnswer() error = %v, want ErrRulesNotAccepted", err)
	}
	if len(f.answerRepo.answers) != 0 {
		t.Error("rejected submission must not be persisted")
	}
}

// 未发布的历史答案同样算"已参与"。
func TestSubmitAnswerDuplicateEvenIfUnpublished(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.answerRepo.answers = []*domain.Answer{
		{ID: 9, PromoID: 1, ParticipantID: "u1", Published: false},
	}

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if !errors.Is(err, domain.ErrAlreadyEntered) {
		t.Errorf("SubmitAnswer() error = %v, want ErrAlreadyEntered", err)
	}
	if f.guard.claims != 0 {
		t.Error("pre-check duplicate should short-circuit before claiming")
	}
}

// 已报名优先于其他拒绝原因：重复投稿即使没勾选同意规则，
// 返回的也是"已报名"而不是"未同意规则"。
func TestSubmitAnswerDuplicateTakesPrecedenceOverRules(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.answerRepo.answers = []*domain.Answer{
		{ID: 9, PromoID: 1, ParticipantID: "u1", Published: true},
	}

	req := submitReq("summer")
	req.Agree = false
	_, err := f.service.SubmitAnswer(context.Background(), req, testNow)
	if !errors.Is(err, domain.ErrAlreadyEntered) {
		t.Errorf("SubmitAnswer() error = %v, want ErrAlreadyEntered", err)
	}
}

func TestSubmitAnswerIncompleteEntry(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")

	req := submitReq("summer")
	req.Text = ""
	_, err := f.service.SubmitAnswer(context.Background(), req, testNow)
	if !errors.Is(err, domain.ErrIncompleteEntry) {
		t.Errorf("SubmitAnswer() error = %v, want ErrIncompleteEntry", err)
	}
}

// 纯报名活动（form_type=none）不要求任何内容。
func TestSubmitAnswerSignupOnlyPromo(t *testing.T) {
	f := newFixture()
	p := openPromo("signup")
	p.FormType = domain.FormTypeNone
	f.promoRepo.promos["signup"] = p

	req := submitReq("signup")
	req.Text = ""
	if _, err := f.service.SubmitAnswer(context.Background(), req, testNow); err != nil {
		t.Errorf("SubmitAnswer() error = %v, want nil", err)
	}
}

func TestSubmitAnswerBadFormTypeConfig(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.FormType = "text|video"
	f.promoRepo.promos["summer"] = p

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("SubmitAnswer() error = %v, want ErrConfiguration", err)
	}
}

func TestSubmitAnswerNotEligible(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.EntryRule = "age >= 18"
	f.promoRepo.promos["summer"] = p
	f.ruleEngine.result = false

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("SubmitAnswer() error = %v, want ErrNotEligible", err)
	}
}

func TestSubmitAnswerClaimLost(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.guard.claimResult = false

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if !errors.Is(err, domain.ErrAlreadyEntered) {
		t.Errorf("SubmitAnswer() error = %v, want ErrAlreadyEntered", err)
	}
	if len(f.answerRepo.answers) != 0 {
		t.Error("lost claim must not reach the repository")
	}
}

// 落库失败要释放占位；唯一键冲突则保留占位。
func TestSubmitAnswerInsertFailureReleasesClaim(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.answerRepo.createErr = errors.New("connection reset")

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if err == nil {
		t.Fatal("expected error from insert failure")
	}
	if f.guard.releases != 1 {
		t.Errorf("expected 1 release after insert failure, got %d", f.guard.releases)
	}
}

func TestSubmitAnswerDuplicateKeyKeepsClaim(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.answerRepo.createErr = domain.ErrAlreadyEntered

	_, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if !errors.Is(err, domain.ErrAlreadyEntered) {
		t.Fatalf("SubmitAnswer() error = %v, want ErrAlreadyEntered", err)
	}
	if f.guard.releases != 0 {
		t.Error("claim must be kept when the participant really has entered")
	}
}

// ---- 确认邮件 ----

func TestSubmitAnswerProducesConfirmation(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.SendConfirmationEmail = true
	p.ConfirmationEmailAddress = "promo@example.com"
	f.promoRepo.promos["summer"] = p

	if _, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("expected 1 confirmation event, got %d", len(f.notifier.events))
	}
	event := f.notifier.events[0]
	if event.To != "ana@example.com" || event.From != "promo@example.com" {
		t.Errorf("unexpected event addressing: %+v", event)
	}
	if event.Subject != "You are now registered for Summer Contest." {
		t.Errorf("unexpected subject: %q", event.Subject)
	}
	if event.BodyTxt != "Thank you! You are now inscribed to Summer Contest" {
		t.Errorf("unexpected default body: %q", event.BodyTxt)
	}
}

func TestSubmitAnswerConfirmationDisabled(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")

	if _, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if len(f.notifier.events) != 0 {
		t.Error("no confirmation expected when the promo has it disabled")
	}
}

// 通知失败绝不影响已提交的投稿。
func TestSubmitAnswerNotificationFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.SendConfirmationEmail = true
	f.promoRepo.promos["summer"] = p
	f.notifier.sendErr = errors.New("kafka unreachable")

	resp, err := f.service.SubmitAnswer(context.Background(), submitReq("summer"), testNow)
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v, want nil", err)
	}
	if resp.Status != "ACCEPTED" {
		t.Errorf("Status = %q, want ACCEPTED", resp.Status)
	}
	if len(f.answerRepo.answers) != 1 {
		t.Error("answer must stay persisted after notification failure")
	}
}

// ---- 详情 ----

func TestGetPromoDetailHidesUnpublished(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.Published = false
	f.promoRepo.promos["summer"] = p

	_, err := f.service.GetPromoDetail(context.Background(), "summer", "", testNow, false)
	if !errors.Is(err, domain.ErrPromoNotFound) {
		t.Errorf("GetPromoDetail() error = %v, want ErrPromoNotFound", err)
	}

	// 预览模式放开可见性过滤
	if _, err := f.service.GetPromoDetail(context.Background(), "summer", "", testNow, true); err != nil {
		t.Errorf("GetPromoDetail() in preview = %v, want nil", err)
	}
}

func TestGetPromoDetailAnswersAndWinners(t *testing.T) {
	f := newFixture()
	p := openPromo("summer")
	p.DisplayAnswers = true
	p.DisplayWinners = true
	p.CountdownEnabled = true
	f.promoRepo.promos["summer"] = p
	f.answerRepo.answers = []*domain.Answer{
		{ID: 1, PromoID: 1, ParticipantID: "u1", Text: "a", Published: true},
		{ID: 2, PromoID: 1, ParticipantID: "u2", Text: "b", Published: true, IsWinner: true},
		{ID: 3, PromoID: 1, ParticipantID: "u3", Text: "hidden", Published: false},
	}

	detail, err := f.service.GetPromoDetail(context.Background(), "summer", "u1", testNow, false)
	if err != nil {
		t.Fatalf("GetPromoDetail() error = %v", err)
	}
	if len(detail.Answers) != 2 {
		t.Errorf("Answers = %d, want 2 (unpublished hidden)", len(detail.Answers))
	}
	if len(detail.Winners) != 1 || !detail.Winners[0].IsWinner {
		t.Errorf("Winners = %+v, want the single winner", detail.Winners)
	}
	if !detail.Answered {
		t.Error("Answered should be true for a participant with an entry")
	}
	if detail.CountdownSeconds != 3600 {
		t.Errorf("CountdownSeconds = %d, want 3600", detail.CountdownSeconds)
	}
}

func TestGetPromoDetailDisplayFlagsOff(t *testing.T) {
	f := newFixture()
	f.promoRepo.promos["summer"] = openPromo("summer")
	f.answerRepo.answers = []*domain.Answer{
		{ID: 1, PromoID: 1, ParticipantID: "u1", Published: true, IsWinner: true},
	}

	detail, err := f.service.GetPromoDetail(context.Background(), "summer", "", testNow, false)
	if err != nil {
		t.Fatalf("GetPromoDetail() error = %v", err)
	}
	if detail.Answers != nil || detail.Winners != nil {
		t.Error("answers/winners must not leak when display flags are off")
	}
	if detail.Answered {
		t.Error("Answered should stay false without a participant id")
	}
}

// ---- 列表 ----

func TestListPromos(t *testing.T) {
	f := newFixture()
	open := openPromo("open")
	f.promoRepo.promos["open"] = open

	closedEnd := testNow.Add(-time.Hour)
	closedStart := testNow.Add(-2 * time.Hour)
	f.promoRepo.promos["closed"] = &domain.Promo{
		ID: 2, Slug: "closed", Title: "Old", FormType: domain.FormTypeNone,
		Published: true, DateAvailable: &closedStart, DateEnd: &closedEnd,
	}

	opened, err := f.service.ListOpenedPromos(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ListOpenedPromos() error = %v", err)
	}
	if len(opened) != 1 || opened[0].Slug != "open" || !opened[0].IsOpen {
		t.Errorf("ListOpenedPromos() = %+v", opened)
	}

	closed, err := f.service.ListClosedPromos(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ListClosedPromos() error = %v", err)
	}
	if len(closed) != 1 || closed[0].Slug != "closed" || closed[0].IsOpen {
		t.Errorf("ListClosedPromos() = %+v", closed)
	}
}
