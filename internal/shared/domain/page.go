package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page représente une demande de pagination par offset, toujours valide
type Page struct {
	number int
	size   int
}

// NewPage crée une Page en ramenant les valeurs invalides à des bornes saines
// plutôt que de renvoyer une erreur
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{number: number, size: size}
}

// Number retourne le numéro de page (>= 1)
func (p Page) Number() int {
	return p.number
}

// Size retourne la taille de page (> 0)
func (p Page) Size() int {
	return p.size
}

// Offset retourne le nombre de lignes à sauter
func (p Page) Offset() int {
	return (p.number - 1) * p.size
}
