package model

// Family is the closed classification of an entity class. It decides which
// direction a relationship lookup takes.
type Family int

// Entity families. FamilyUnknown is never a valid classification.
const (
	FamilyUnknown Family = iota
	FamilyContent
	FamilyTaxonomy
)

func (f Family) String() string {
	switch f {
	case FamilyContent:
		return "content"
	case FamilyTaxonomy:
		return "taxonomy"
	default:
		return "unknown"
	}
}
