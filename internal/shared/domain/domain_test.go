package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestPercentOf_ZeroOrAbsentDenominator(t *testing.T) {
	cases := []struct {
		name  string
		part  float64
		whole float64
	}{
		{"zero", 15, 0},
		{"negative", 15, -10},
		{"nan", 15, math.NaN()},
		{"inf", 15, math.Inf(1)},
		{"zero over zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PercentOf(tc.part, tc.whole)
			if got != 0 {
				t.Fatalf("PercentOf(%v, %v) = %v, want 0", tc.part, tc.whole, got)
			}
		})
	}
}

func TestPercentOf_ExactBoundaries(t *testing.T) {
	if got := PercentOf(70, 100); got != 70 {
		t.Errorf("PercentOf(70, 100) = %v, want 70", got)
	}
	if got := PercentOf(15, 80); got != 18.75 {
		t.Errorf("PercentOf(15, 80) = %v, want 18.75", got)
	}
	if got := PercentOf(-5, 80); got != -6.25 {
		t.Errorf("PercentOf(-5, 80) = %v, want -6.25", got)
	}
}

func TestDiscountPercent_CentPrices(t *testing.T) {
	cases := []struct {
		regular, promo float64
		want           float64
	}{
		{1.00, 0.90, 10},
		{33.30, 9.99, 70},
		{1.45, 0.87, 40},
		{0.40, 0.30, 25},
		{19.99, 13.33, 33.32},
		{100, 100, 0},
		{0, 10, 0},
	}
	for _, tc := range cases {
		if got := DiscountPercent(tc.regular, tc.promo); got != tc.want {
			t.Errorf("DiscountPercent(%v, %v) = %v, want %v", tc.regular, tc.promo, got, tc.want)
		}
	}
}

func TestDiscountPercent_ExactCentSweep(t *testing.T) {
	for _, percent := range []int64{10, 25, 40, 50, 70} {
		for cents := int64(1); cents <= 100000; cents++ {
			if cents*percent%100 != 0 {
				continue
			}
			promo := cents * (100 - percent) / 100
			if got := DiscountPercent(float64(cents)/100, float64(promo)/100); got != float64(percent) {
				t.Fatalf("DiscountPercent(%d, %d cents) = %v, want %d", cents, promo, got, percent)
			}
		}
	}
}

func TestRounding(t *testing.T) {
	if got := PercentOf(1, 3); got != 33.33 {
		t.Errorf("PercentOf(1, 3) = %v, want 33.33", got)
	}
	if got := PercentOf(2, 3); got != 66.67 {
		t.Errorf("PercentOf(2, 3) = %v, want 66.67", got)
	}
	if got := Difference(0.3, 0.1); got != 0.2 {
		t.Errorf("Difference(0.3, 0.1) = %v, want 0.2", got)
	}
	if got := Round2(1.005); got != 1.01 {
		t.Errorf("Round2(1.005) = %v, want 1.01", got)
	}
	if got := Round2(math.NaN()); got != 0 {
		t.Errorf("Round2(NaN) = %v, want 0", got)
	}
}

func TestNewPrice(t *testing.T) {
	if NewPrice(0).IsPositive() {
		t.Error("zero price must not be positive")
	}
	if NewPrice(-1).IsPositive() {
		t.Error("negative price must not be positive")
	}
	if NewPrice(math.NaN()).IsPositive() {
		t.Error("NaN price must not be positive")
	}
	p := NewPrice(12.5)
	if !p.IsPositive() || p.Amount() != 12.5 {
		t.Errorf("NewPrice(12.5) = %+v", p)
	}
	if NewPrice(0).Ptr() != nil {
		t.Error("Ptr of an empty price must be nil")
	}
}

func TestNewPage_Clamps(t *testing.T) {
	cases := []struct {
		number, size         int
		wantNumber, wantSize int
		wantOffset           int
	}{
		{0, 0, 1, DefaultPageSize, 0},
		{-3, -1, 1, DefaultPageSize, 0},
		{3, 10, 3, 10, 20},
		{2, 1000, 2, MaxPageSize, MaxPageSize},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_%d", tc.number, tc.size), func(t *testing.T) {
			p := NewPage(tc.number, tc.size)
			if p.Number() != tc.wantNumber || p.Size() != tc.wantSize || p.Offset() != tc.wantOffset {
				t.Fatalf("NewPage(%d, %d) = (%d, %d, offset %d)", tc.number, tc.size, p.Number(), p.Size(), p.Offset())
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	end := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	dr, err := NewDateRangeEndingAt(end, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !dr.Contains(end.AddDate(0, 0, -30)) {
		t.Error("start bound must be included")
	}
	if dr.Contains(end.AddDate(0, 0, -31)) {
		t.Error("31 days ago must be outside a 30 day window")
	}
	if _, err := NewDateRangeEndingAt(end, -1); err == nil {
		t.Error("negative days must fail")
	}
}

func TestWholeDaysBetween(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	if got := WholeDaysBetween(now.Add(-47*time.Hour), now); got != 1 {
		t.Errorf("47h = %d days, want 1", got)
	}
	if got := WholeDaysBetween(now.Add(time.Hour), now); got != 0 {
		t.Errorf("future timestamp = %d days, want 0", got)
	}
}

func TestErrorKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidReference("ReplaceMatches", "final product %d not found", 7))
	if !IsKind(err, KindInvalidReference) {
		t.Fatalf("expected InvalidReference, got %q", KindOf(err))
	}
	if IsKind(errors.New("plain"), KindInvalidReference) {
		t.Error("plain errors carry no kind")
	}
	if IsKind(nil, KindInvalidReference) {
		t.Error("nil carries no kind")
	}
}

func TestPrice_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}{A: NewPrice(12.5), B: NewPrice(-1)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":12.5,"b":null}` {
		t.Errorf("got %s", b)
	}
}
