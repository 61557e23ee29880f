package domain

import (
	"sort"
	"time"

	shareddomain "pricetrack/internal/shared/domain"
)

// LowestMoment prix historique le plus bas d'une annonce comparé à son prix courant
type LowestMoment struct {
	Listing                   ListingRef `json:"listing"`
	LowestPrice               float64    `json:"lowest_price"`
	LowestObservedAt          time.Time  `json:"lowest_observed_at"`
	CurrentPrice              float64    `json:"current_price"`
	CurrentObservedAt         time.Time  `json:"current_observed_at"`
	PriceDifference           float64    `json:"price_difference"`
	PriceDifferencePercentage float64    `json:"price_difference_percentage"`
	DaysSinceLowest           int        `json:"days_since_lowest"`
}

// NewLowestMoment construit la ligne à partir du minimum et du dernier prix positifs
// Une différence négative (course entre lecture du minimum et du dernier prix) est conservée
func NewLowestMoment(listing ListingRef, lowest, current PriceObservation, now time.Time) (LowestMoment, bool) {
	if !lowest.Price.IsPositive() || !current.Price.IsPositive() {
		return LowestMoment{}, false
	}

	diff := shareddomain.Difference(current.Price.Amount(), lowest.Price.Amount())
	return LowestMoment{
		Listing:                   listing,
		LowestPrice:               lowest.Price.Amount(),
		LowestObservedAt:          lowest.ObservedAt,
		CurrentPrice:              current.Price.Amount(),
		CurrentObservedAt:         current.ObservedAt,
		PriceDifference:           diff,
		PriceDifferencePercentage: shareddomain.PercentOf(diff, lowest.Price.Amount()),
		DaysSinceLowest:           shareddomain.WholeDaysBetween(lowest.ObservedAt, now),
	}, true
}

// LowestMomentFromHistory calcule la ligne depuis l'historique complet d'une annonce
// Le minimum à égalité retient l'observation la plus ancienne; les prix non positifs sont ignorés
func LowestMomentFromHistory(listing ListingRef, history []PriceObservation, now time.Time) (LowestMoment, bool) {
	var (
		lowest, latest PriceObservation
		found          bool
	)
	for _, o := range history {
		if !o.Price.IsPositive() {
			continue
		}
		if !found {
			lowest, latest, found = o, o, true
			continue
		}
		if o.Price.LessThan(lowest.Price) ||
			(o.Price.Amount() == lowest.Price.Amount() && o.ObservedAt.Before(lowest.ObservedAt)) {
			lowest = o
		}
		if o.ObservedAt.After(latest.ObservedAt) {
			latest = o
		}
	}
	if !found {
		return LowestMoment{}, false
	}
	return NewLowestMoment(listing, lowest, latest, now)
}

// SortLowestMoments trie par prix le plus bas croissant, puis par annonce
func SortLowestMoments(rows []LowestMoment) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LowestPrice != rows[j].LowestPrice {
			return rows[i].LowestPrice < rows[j].LowestPrice
		}
		return rows[i].Listing.ID < rows[j].Listing.ID
	})
}
