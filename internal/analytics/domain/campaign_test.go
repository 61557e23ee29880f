package domain

import (
	"math"
	"testing"
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

var refNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func window(t *testing.T, days int) shareddomain.DateRange {
	t.Helper()
	w, err := shareddomain.NewDateRangeEndingAt(refNow, days)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func obs(price, promo float64, at time.Time) PriceObservation {
	return PriceObservation{
		ListingID:  1,
		Price:      shareddomain.NewPrice(price),
		PromoPrice: shareddomain.NewPrice(promo),
		ObservedAt: at,
	}
}

func TestNewCampaignEvent_Classification(t *testing.T) {
	w := window(t, 30)
	listing := ListingRef{ID: 1, Platform: "amazon"}

	tests := []struct {
		name           string
		regular, promo float64
		wantDiscount   float64
		wantTier       CampaignTier
		wantConfidence Confidence
	}{
		{"flash sale boundary", 100, 30, 70, TierFlashSale, ConfidenceHigh},
		{"regular discount medium", 100, 65, 35, TierRegularDiscount, ConfidenceMedium},
		{"sudden drop boundary", 100, 60, 40, TierSuddenDrop, ConfidenceMedium},
		{"high confidence boundary", 100, 50, 50, TierSuddenDrop, ConfidenceHigh},
		{"regular discount boundary", 100, 90, 10, TierRegularDiscount, ConfidenceLow},
		{"minor discount", 100, 95, 5, TierMinorDiscount, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := NewCampaignEvent(listing, obs(tt.regular, tt.promo, refNow.Add(-time.Hour)), w, 1)
			if !ok {
				t.Fatal("expected an event")
			}
			if math.Abs(e.DiscountPercent-tt.wantDiscount) > 1e-9 {
				t.Errorf("DiscountPercent = %v, want %v", e.DiscountPercent, tt.wantDiscount)
			}
			if e.Tier != tt.wantTier {
				t.Errorf("Tier = %s, want %s", e.Tier, tt.wantTier)
			}
			if e.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %s, want %s", e.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestNewCampaignEvent_NoCampaignWithoutPromo(t *testing.T) {
	w := window(t, 30)
	at := refNow.Add(-24 * time.Hour)

	cases := map[string]PriceObservation{
		"promo absent":         {Price: shareddomain.NewPrice(100), ObservedAt: at},
		"promo zero":           obs(100, 0, at),
		"promo negative":       obs(100, -10, at),
		"promo equal":          obs(100, 100, at),
		"promo above regular":  obs(100, 120, at),
		"regular zero":         obs(0, 50, at),
		"regular NaN":          obs(math.NaN(), 50, at),
		"outside lookback":     obs(100, 50, refNow.AddDate(0, 0, -31)),
		"in the future":        obs(100, 50, refNow.Add(time.Hour)),
		"below min discount 1": obs(100, 99.5, at),
	}

	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			if e, ok := NewCampaignEvent(ListingRef{ID: 1}, o, w, 1); ok {
				t.Errorf("unexpected event: %+v", e)
			}
		})
	}
}

func TestNewCampaignEvent_MinDiscountIsInclusive(t *testing.T) {
	w := window(t, 30)
	if _, ok := NewCampaignEvent(ListingRef{}, obs(200, 150, refNow), w, 25); !ok {
		t.Error("25% discount should pass a 25% minimum")
	}
	if _, ok := NewCampaignEvent(ListingRef{}, obs(200, 150, refNow), w, 25.01); ok {
		t.Error("25% discount should not pass a 25.01% minimum")
	}
}

func TestNewCampaignEvent_CentPriceBoundaries(t *testing.T) {
	w := window(t, 30)
	at := refNow.Add(-time.Hour)

	tests := []struct {
		regular, promo float64
		minDiscount    float64
		wantDiscount   float64
		wantTier       CampaignTier
		wantConfidence Confidence
	}{
		{1.00, 0.90, 10, 10, TierRegularDiscount, ConfidenceLow},
		{33.30, 9.99, 70, 70, TierFlashSale, ConfidenceHigh},
		{1.45, 0.87, 40, 40, TierSuddenDrop, ConfidenceMedium},
		{0.40, 0.30, 25, 25, TierRegularDiscount, ConfidenceMedium},
		{19.99, 13.33, 1, 33.32, TierRegularDiscount, ConfidenceMedium},
	}

	for _, tt := range tests {
		e, ok := NewCampaignEvent(ListingRef{ID: 1}, obs(tt.regular, tt.promo, at), w, tt.minDiscount)
		if !ok {
			t.Errorf("%v/%v: no event at a %v%% minimum", tt.regular, tt.promo, tt.minDiscount)
			continue
		}
		if e.DiscountPercent != tt.wantDiscount || e.Tier != tt.wantTier || e.Confidence != tt.wantConfidence {
			t.Errorf("%v/%v: got %v %s %s", tt.regular, tt.promo, e.DiscountPercent, e.Tier, e.Confidence)
		}
	}
}

// Toutes les paires en centimes à remise exacte atteignent leur seuil
func TestNewCampaignEvent_ExactThresholdSweep(t *testing.T) {
	w := window(t, 30)
	at := refNow.Add(-time.Hour)

	thresholds := []struct {
		percent int64
		tier    CampaignTier
	}{
		{10, TierRegularDiscount},
		{25, TierRegularDiscount},
		{40, TierSuddenDrop},
		{70, TierFlashSale},
	}

	for _, th := range thresholds {
		failures := 0
		for cents := int64(100); cents <= 100000; cents++ {
			if cents*th.percent%100 != 0 {
				continue
			}
			promoCents := cents * (100 - th.percent) / 100
			e, ok := NewCampaignEvent(ListingRef{ID: 1}, obs(float64(cents)/100, float64(promoCents)/100, at), w, float64(th.percent))
			if !ok || e.DiscountPercent != float64(th.percent) || e.Tier != th.tier {
				failures++
			}
		}
		if failures > 0 {
			t.Errorf("%d%% off: %d cent pairs rejected or misclassified", th.percent, failures)
		}
	}
}

func TestLatestPerPromotion(t *testing.T) {
	w := window(t, 30)
	var events []CampaignEvent
	for day := 1; day <= 30; day++ {
		e, ok := NewCampaignEvent(ListingRef{ID: 1, Platform: "amazon"}, obs(100, 60, refNow.AddDate(0, 0, -day).Add(time.Hour)), w, 1)
		if !ok {
			t.Fatalf("day %d: expected an event", day)
		}
		events = append(events, e)
	}
	other, _ := NewCampaignEvent(ListingRef{ID: 1, Platform: "amazon"}, obs(100, 50, refNow.Add(-time.Hour)), w, 1)
	sameOnOtherListing, _ := NewCampaignEvent(ListingRef{ID: 2, Platform: "amazon"}, obs(100, 60, refNow.Add(-time.Hour)), w, 1)
	events = append(events, other, sameOnOtherListing)

	report := NewCampaignReport(DefaultCampaignParams(), events)
	if report.Stats.TotalEvents != 3 || report.Stats.ByPlatform["amazon"] != 3 {
		t.Fatalf("stats = %+v, want 3 distinct promotions", report.Stats)
	}
	for _, e := range report.Events {
		if e.Listing.ID == 1 && e.PromoPrice == 60 && !e.ObservedAt.Equal(refNow.AddDate(0, 0, -1).Add(time.Hour)) {
			t.Errorf("kept %v, want the most recent observation", e.ObservedAt)
		}
	}
}

func TestComputeCampaignStats_Empty(t *testing.T) {
	stats := ComputeCampaignStats(nil)

	if stats.TotalEvents != 0 || stats.MaxDiscountPercent != 0 || stats.MeanDiscountPercent != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if math.IsNaN(stats.MeanDiscountPercent) {
		t.Error("mean is NaN")
	}
	for _, tier := range CampaignTiers {
		if n, ok := stats.ByTier[tier]; !ok || n != 0 {
			t.Errorf("ByTier[%s] = %d, %v", tier, n, ok)
		}
	}
	for _, c := range Confidences {
		if n, ok := stats.ByConfidence[c]; !ok || n != 0 {
			t.Errorf("ByConfidence[%s] = %d, %v", c, n, ok)
		}
	}
	if len(stats.ByPlatform) != 0 {
		t.Errorf("ByPlatform = %v", stats.ByPlatform)
	}
}

func TestNewCampaignReport(t *testing.T) {
	w := window(t, 30)
	mk := func(id catalogdomain.ListingID, platform string, regular, promo float64, hoursAgo int) CampaignEvent {
		e, ok := NewCampaignEvent(ListingRef{ID: id, Platform: platform}, obs(regular, promo, refNow.Add(-time.Duration(hoursAgo)*time.Hour)), w, 1)
		if !ok {
			t.Fatalf("expected event for %v/%v", regular, promo)
		}
		return e
	}

	events := []CampaignEvent{
		mk(1, "amazon", 100, 65, 10), // 35%
		mk(2, "", 100, 30, 5),        // 70%
		mk(3, "amazon", 100, 65, 2),  // 35%, plus récent
		mk(4, "n11", 200, 190, 1),    // 5%
	}

	report := NewCampaignReport(DefaultCampaignParams(), events)

	if got := report.Events[0].DiscountPercent; got != 70 {
		t.Errorf("first event discount = %v, want 70", got)
	}
	if !report.Events[1].ObservedAt.After(report.Events[2].ObservedAt) {
		t.Error("equal discounts should be ordered by most recent first")
	}

	s := report.Stats
	if s.TotalEvents != 4 {
		t.Errorf("TotalEvents = %d", s.TotalEvents)
	}
	if s.ByTier[TierFlashSale] != 1 || s.ByTier[TierRegularDiscount] != 2 || s.ByTier[TierMinorDiscount] != 1 || s.ByTier[TierSuddenDrop] != 0 {
		t.Errorf("ByTier = %v", s.ByTier)
	}
	if s.ByConfidence[ConfidenceHigh] != 1 || s.ByConfidence[ConfidenceMedium] != 2 || s.ByConfidence[ConfidenceLow] != 1 {
		t.Errorf("ByConfidence = %v", s.ByConfidence)
	}
	if s.ByPlatform["amazon"] != 2 || s.ByPlatform["unknown"] != 1 || s.ByPlatform["n11"] != 1 {
		t.Errorf("ByPlatform = %v", s.ByPlatform)
	}
	if s.MaxDiscountPercent != 70 {
		t.Errorf("MaxDiscountPercent = %v", s.MaxDiscountPercent)
	}
	if s.MeanDiscountPercent != 36.25 {
		t.Errorf("MeanDiscountPercent = %v, want 36.25", s.MeanDiscountPercent)
	}
}

func TestCampaignParams_Validate(t *testing.T) {
	valid := []CampaignParams{DefaultCampaignParams(), {0, 0}, {100, 365}}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("%+v: unexpected error %v", p, err)
		}
	}

	invalid := []CampaignParams{{-1, 30}, {100.5, 30}, {1, -1}}
	for _, p := range invalid {
		if err := p.Validate(); !shareddomain.IsKind(err, shareddomain.KindInvalidInput) {
			t.Errorf("%+v: got %v, want InvalidInput", p, err)
		}
	}
}

func BenchmarkComputeCampaignStats_1000(b *testing.B) {
	events := make([]CampaignEvent, 1000)
	for i := range events {
		d := float64(i % 90)
		events[i] = CampaignEvent{
			Listing:         ListingRef{Platform: []string{"amazon", "n11", "trendyol"}[i%3]},
			DiscountPercent: d,
			Tier:            ClassifyTier(d),
			Confidence:      ClassifyConfidence(d),
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = ComputeCampaignStats(events)
	}
}
