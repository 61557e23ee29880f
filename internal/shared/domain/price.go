package domain

import (
	"database/sql"
	"encoding/json"
	"math"
)

// Price représente un prix observé sur une marketplace
// Un prix absent, nul, négatif ou non fini est considéré comme "sans valeur"
type Price struct {
	amount float64
	valid  bool
}

// NewPrice crée un Price; les montants non positifs donnent un prix sans valeur
func NewPrice(amount float64) Price {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Price{}
	}
	return Price{amount: amount, valid: true}
}

// PriceFromNull convertit une colonne NUMERIC nullable en Price
func PriceFromNull(n sql.NullFloat64) Price {
	if !n.Valid {
		return Price{}
	}
	return NewPrice(n.Float64)
}

// Amount retourne le montant (0 si le prix est sans valeur)
func (p Price) Amount() float64 {
	return p.amount
}

// IsPositive vérifie si le prix porte une valeur strictement positive
func (p Price) IsPositive() bool {
	return p.valid
}

// LessThan compare deux prix positifs
func (p Price) LessThan(other Price) bool {
	return p.valid && other.valid && p.amount < other.amount
}

// Ptr retourne le montant sous forme de pointeur (nil si sans valeur), pour le JSON
func (p Price) Ptr() *float64 {
	if !p.valid {
		return nil
	}
	v := p.amount
	return &v
}

// MarshalJSON encode le montant, ou null si le prix est sans valeur
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Ptr())
}
