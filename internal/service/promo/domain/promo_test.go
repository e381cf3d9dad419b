package domain

import (
	"errors"
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func TestPromoIsOpenAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		promo Promo
		want  bool
	}{
		{
			name:  "no dates configured is always open",
			promo: Promo{},
			want:  true,
		},
		{
			name:  "start in the future",
			promo: Promo{DateAvailable: tp(now.Add(time.Hour))},
			want:  false,
		},
		{
			name:  "start in the past without end",
			promo: Promo{DateAvailable: tp(now.Add(-time.Hour))},
			want:  true,
		},
		{
			name:  "inside window",
			promo: Promo{DateAvailable: tp(now.Add(-time.Hour)), DateEnd: tp(now.Add(time.Hour))},
			want:  true,
		},
		{
			name:  "after end",
			promo: Promo{DateAvailable: tp(now.Add(-2 * time.Hour)), DateEnd: tp(now.Add(-time.Hour))},
			want:  false,
		},
		{
			name:  "exactly at start boundary",
			promo: Promo{DateAvailable: tp(now)},
			want:  true,
		},
		{
			name:  "exactly at end boundary",
			promo: Promo{DateAvailable: tp(now.Add(-time.Hour)), DateEnd: tp(now)},
			want:  true,
		},
		{
			name:  "only end date, not yet passed",
			promo: Promo{DateEnd: tp(now.Add(time.Minute))},
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.promo.IsOpenAt(now); got != tt.want {
				t.Errorf("IsOpenAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

// 窗口判定必须是纯函数：连续求值不会改变结果，也不会改写实体。
func TestPromoIsOpenAtIsPure(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	p := Promo{DateEnd: tp(now.Add(time.Hour))}

	first := p.IsOpenAt(now)
	second := p.IsOpenAt(now)
	if first != second {
		t.Fatalf("IsOpenAt not idempotent: first=%v second=%v", first, second)
	}
	if p.DateAvailable != nil {
		t.Fatal("IsOpenAt must not write a default start back to the entity")
	}
}

func TestPromoEffectiveStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)

	p := Promo{}
	if got := p.EffectiveStart(now); !got.Equal(now) {
		t.Errorf("EffectiveStart() with nil DateAvailable = %v, want %v", got, now)
	}

	p.DateAvailable = &start
	if got := p.EffectiveStart(now); !got.Equal(start) {
		t.Errorf("EffectiveStart() = %v, want %v", got, start)
	}
}

func TestPromoCountdown(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		promo Promo
		want  time.Duration
	}{
		{
			name:  "disabled",
			promo: Promo{CountdownEnabled: false, DateEnd: tp(now.Add(time.Hour))},
			want:  0,
		},
		{
			name:  "no deadline",
			promo: Promo{CountdownEnabled: true},
			want:  0,
		},
		{
			name:  "remaining time",
			promo: Promo{CountdownEnabled: true, DateEnd: tp(now.Add(90 * time.Minute))},
			want:  90 * time.Minute,
		},
		{
			name:  "already past clamps to zero",
			promo: Promo{CountdownEnabled: true, DateEnd: tp(now.Add(-time.Minute))},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.promo.Countdown(now); got != tt.want {
				t.Errorf("Countdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromoValidate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	valid := Promo{Slug: "summer", Title: "Summer Contest", FormType: FormTypeText}

	t.Run("valid promo", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(p *Promo)
	}{
		{"missing slug", func(p *Promo) { p.Slug = "  " }},
		{"missing title", func(p *Promo) { p.Title = "" }},
		{"bad form type", func(p *Promo) { p.FormType = "text|video" }},
		{"end before start", func(p *Promo) {
			p.DateAvailable = tp(now)
			p.DateEnd = tp(now.Add(-time.Hour))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() = %v, want ErrConfiguration", err)
			}
		})
	}
}
