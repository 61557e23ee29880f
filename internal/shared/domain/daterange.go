package domain

import (
	"errors"
	"time"
)

// DateRange représente une période temporelle avec validation
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: pas de setters, valeurs fixées à la création
//   - Validation dans le constructeur
//   - Égalité basée sur les valeurs, pas l'identité
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRangeEndingAt crée un DateRange de `days` jours se terminant à `end`
// Permet d'injecter l'horloge (tests, calculs "par rapport à maintenant" cohérents)
func NewDateRangeEndingAt(end time.Time, days int) (DateRange, error) {
	if days < 0 {
		return DateRange{}, errors.New("days cannot be negative")
	}
	return DateRange{
		start: end.AddDate(0, 0, -days),
		end:   end,
	}, nil
}

// Start retourne la date de début
func (dr DateRange) Start() time.Time {
	return dr.start
}

// End retourne la date de fin
func (dr DateRange) End() time.Time {
	return dr.end
}

// Contains vérifie si t tombe dans la période (bornes incluses)
func (dr DateRange) Contains(t time.Time) bool {
	return !t.Before(dr.start) && !t.After(dr.end)
}

// WholeDaysBetween retourne le nombre de jours entiers écoulés entre from et to, minimum 0
func WholeDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
