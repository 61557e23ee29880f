package domain

import (
	"strings"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// CandidateFilter filtres optionnels du sélecteur de candidats (chaîne vide = pas de filtre)
type CandidateFilter struct {
	Platform    string
	ListingType string
	SearchText  string
}

// Normalize retire les espaces superflus de chaque filtre
func (f CandidateFilter) Normalize() CandidateFilter {
	return CandidateFilter{
		Platform:    strings.TrimSpace(f.Platform),
		ListingType: strings.TrimSpace(f.ListingType),
		SearchText:  strings.TrimSpace(f.SearchText),
	}
}

// ContainsPattern construit un motif ILIKE "contient" où %, _ et \ sont pris littéralement
func ContainsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Candidate annonce éligible à l'association, avec son dernier prix et son statut d'association
// IsCurrentlyMatched est recalculé à chaque lecture, jamais stocké
type Candidate struct {
	Listing            *catalogdomain.RawListing
	LatestPrice        shareddomain.Price
	IsCurrentlyMatched bool
}

// CandidatePage page de candidats et total filtré avant pagination
type CandidatePage struct {
	Items []Candidate
	Total int
	Page  shareddomain.Page
}
