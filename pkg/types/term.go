package types

// Term is a classification term within a taxonomy.
type Term struct {
	ID          int64  `json:"id"`
	Taxonomy    string `json:"taxonomy"` // Slug of the classification scheme.
	Name        string `json:"name"`     // Display label.
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
}

// Validate checks the fields a store requires before persisting a term.
func (t *Term) Validate() error {
	if t.Taxonomy == "" || t.Name == "" {
		return ErrInvalidData
	}
	return nil
}
