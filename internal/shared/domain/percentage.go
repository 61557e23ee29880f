package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PercentOf calcule part * 100 / whole en décimal, arrondi à deux décimales
// Un dénominateur nul, négatif ou absent donne 0; le résultat n'est jamais NaN ni infini.
func PercentOf(part, whole float64) float64 {
	if !finite(part) || !finite(whole) || whole <= 0 {
		return 0
	}
	return decimal.NewFromFloat(part).
		Mul(hundred).
		DivRound(decimal.NewFromFloat(whole), 2).
		InexactFloat64()
}

// DiscountPercent calcule (regular - promo) * 100 / regular, arrondi à deux décimales
// La soustraction est faite en décimal: 1.00 / 0.90 donne exactement 10
func DiscountPercent(regular, promo float64) float64 {
	if !finite(regular) || !finite(promo) || regular <= 0 {
		return 0
	}
	r := decimal.NewFromFloat(regular)
	return r.Sub(decimal.NewFromFloat(promo)).
		Mul(hundred).
		DivRound(r, 2).
		InexactFloat64()
}

// Difference calcule a - b en décimal, arrondi à deux décimales
func Difference(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return 0
	}
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Round2 arrondit à deux décimales (demi au plus loin de zéro, comme ROUND de Postgres)
func Round2(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// SafeMean calcule une moyenne, 0 pour un ensemble vide
func SafeMean(sum float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return sum / float64(count)
}
