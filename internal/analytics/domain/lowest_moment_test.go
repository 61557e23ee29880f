package domain

import (
	"math"
	"testing"
	"time"

	shareddomain "pricetrack/internal/shared/domain"
)

func TestLowestMomentFromHistory(t *testing.T) {
	t1 := refNow.AddDate(0, 0, -10)
	t2 := refNow.AddDate(0, 0, -5).Add(-3 * time.Hour)
	t3 := refNow.AddDate(0, 0, -1)

	history := []PriceObservation{
		obs(100, 0, t1),
		obs(80, 0, t2),
		obs(95, 0, t3),
	}

	lm, ok := LowestMomentFromHistory(ListingRef{ID: 9}, history, refNow)
	if !ok {
		t.Fatal("expected a row")
	}
	if lm.LowestPrice != 80 || !lm.LowestObservedAt.Equal(t2) {
		t.Errorf("lowest = %v at %v", lm.LowestPrice, lm.LowestObservedAt)
	}
	if lm.CurrentPrice != 95 {
		t.Errorf("CurrentPrice = %v", lm.CurrentPrice)
	}
	if lm.PriceDifference != 15 {
		t.Errorf("PriceDifference = %v", lm.PriceDifference)
	}
	if lm.PriceDifferencePercentage != 18.75 {
		t.Errorf("PriceDifferencePercentage = %v", lm.PriceDifferencePercentage)
	}
	if lm.DaysSinceLowest != 5 {
		t.Errorf("DaysSinceLowest = %d, want 5", lm.DaysSinceLowest)
	}
}

func TestLowestMomentFromHistory_Edges(t *testing.T) {
	t.Run("no positive price", func(t *testing.T) {
		history := []PriceObservation{obs(0, 0, refNow), obs(-5, 0, refNow)}
		if _, ok := LowestMomentFromHistory(ListingRef{}, history, refNow); ok {
			t.Error("listing without a positive price must be excluded")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		if _, ok := LowestMomentFromHistory(ListingRef{}, nil, refNow); ok {
			t.Error("expected no row")
		}
	})

	t.Run("ties resolve to earliest", func(t *testing.T) {
		early := refNow.AddDate(0, 0, -20)
		late := refNow.AddDate(0, 0, -2)
		history := []PriceObservation{obs(50, 0, late), obs(50, 0, early), obs(70, 0, refNow)}
		lm, _ := LowestMomentFromHistory(ListingRef{}, history, refNow)
		if !lm.LowestObservedAt.Equal(early) {
			t.Errorf("LowestObservedAt = %v, want %v", lm.LowestObservedAt, early)
		}
	})

	t.Run("zero latest sample ignored", func(t *testing.T) {
		history := []PriceObservation{obs(60, 0, refNow.AddDate(0, 0, -3)), obs(0, 0, refNow)}
		lm, _ := LowestMomentFromHistory(ListingRef{}, history, refNow)
		if lm.CurrentPrice != 60 || lm.PriceDifference != 0 {
			t.Errorf("got current=%v diff=%v", lm.CurrentPrice, lm.PriceDifference)
		}
	})

	t.Run("lowest in the future floors to zero days", func(t *testing.T) {
		history := []PriceObservation{obs(10, 0, refNow.Add(2*time.Hour))}
		lm, _ := LowestMomentFromHistory(ListingRef{}, history, refNow)
		if lm.DaysSinceLowest != 0 {
			t.Errorf("DaysSinceLowest = %d", lm.DaysSinceLowest)
		}
	})
}

func TestNewLowestMoment_KeepsNegativeDifference(t *testing.T) {
	lowest := obs(100, 0, refNow.AddDate(0, 0, -1))
	current := obs(90, 0, refNow)

	lm, ok := NewLowestMoment(ListingRef{}, lowest, current, refNow)
	if !ok {
		t.Fatal("expected a row")
	}
	if lm.PriceDifference != -10 || lm.PriceDifferencePercentage != -10 {
		t.Errorf("got diff=%v pct=%v", lm.PriceDifference, lm.PriceDifferencePercentage)
	}
}

func TestNewLowestMoment_RoundsToCents(t *testing.T) {
	lowest := obs(30, 0, refNow.AddDate(0, 0, -2))
	current := obs(40, 0, refNow)
	lm, ok := NewLowestMoment(ListingRef{}, lowest, current, refNow)
	if !ok || lm.PriceDifference != 10 || lm.PriceDifferencePercentage != 33.33 {
		t.Errorf("lm = %+v", lm)
	}

	lowest = obs(0.1, 0, refNow.AddDate(0, 0, -2))
	current = obs(0.3, 0, refNow)
	lm, _ = NewLowestMoment(ListingRef{}, lowest, current, refNow)
	if lm.PriceDifference != 0.2 || lm.PriceDifferencePercentage != 200 {
		t.Errorf("float cents: lm = %+v", lm)
	}
}

func TestNewLowestMoment_NeverNaN(t *testing.T) {
	bad := []float64{0, -1, math.NaN(), math.Inf(1)}
	for _, v := range bad {
		lowest := PriceObservation{Price: shareddomain.NewPrice(v), ObservedAt: refNow}
		current := obs(10, 0, refNow)
		if lm, ok := NewLowestMoment(ListingRef{}, lowest, current, refNow); ok {
			t.Errorf("lowest=%v: expected exclusion, got %+v", v, lm)
		}
	}
}

func TestSortLowestMoments(t *testing.T) {
	rows := []LowestMoment{
		{Listing: ListingRef{ID: 3}, LowestPrice: 50},
		{Listing: ListingRef{ID: 1}, LowestPrice: 80},
		{Listing: ListingRef{ID: 2}, LowestPrice: 50},
	}
	SortLowestMoments(rows)

	want := []int64{2, 3, 1}
	for i, id := range want {
		if int64(rows[i].Listing.ID) != id {
			t.Fatalf("order = %v", rows)
		}
	}
}
