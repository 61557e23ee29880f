package domain

import (
	"sort"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// ReconcileResult nombre d'associations ajoutées et supprimées par une réconciliation
type ReconcileResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// MatchDiff écart entre l'ensemble d'associations courant et l'ensemble souhaité
type MatchDiff struct {
	ToAdd    []catalogdomain.ListingID
	ToRemove []catalogdomain.ListingID
}

// IsEmpty vérifie si aucune écriture n'est nécessaire
func (d MatchDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// NormalizeListingIDs valide et dédoublonne une liste d'identifiants d'annonces (ordre croissant)
// Un identifiant non positif est une entrée invalide
func NormalizeListingIDs(op string, ids []catalogdomain.ListingID) ([]catalogdomain.ListingID, error) {
	seen := make(map[catalogdomain.ListingID]struct{}, len(ids))
	out := make([]catalogdomain.ListingID, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, shareddomain.InvalidInput(op, "listing id must be positive, got %d", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sortIDs(out)
	return out, nil
}

// Diff calcule D \ C (à ajouter) et C \ D (à supprimer); les deux listes sont triées
func Diff(current, desired []catalogdomain.ListingID) MatchDiff {
	cur := toSet(current)
	want := toSet(desired)

	diff := MatchDiff{
		ToAdd:    make([]catalogdomain.ListingID, 0),
		ToRemove: make([]catalogdomain.ListingID, 0),
	}
	for id := range want {
		if _, ok := cur[id]; !ok {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for id := range cur {
		if _, ok := want[id]; !ok {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}
	sortIDs(diff.ToAdd)
	sortIDs(diff.ToRemove)
	return diff
}

func toSet(ids []catalogdomain.ListingID) map[catalogdomain.ListingID]struct{} {
	set := make(map[catalogdomain.ListingID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortIDs(ids []catalogdomain.ListingID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
