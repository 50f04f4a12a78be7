package types

// Post type features a post type may support.
const (
	FeatureTitle     = "title"
	FeatureEditor    = "editor"
	FeatureAuthor    = "author"
	FeatureThumbnail = "thumbnail"
	FeatureExcerpt   = "excerpt"
	FeatureComments  = "comments"
	FeatureRevisions = "revisions"
)

// PostType describes a registered content type. The named fields replace
// the label lookups a dynamic object would offer: Slug doubles as the ID,
// One is the singular label and Many the plural one.
type PostType struct {
	Slug     string   `json:"slug" yaml:"slug"`
	One      string   `json:"one" yaml:"one"`
	Many     string   `json:"many" yaml:"many"`
	Supports []string `json:"supports" yaml:"supports"`
	Public   bool     `json:"public" yaml:"public"`
}

// ID returns the post type identifier, which is its slug.
func (pt *PostType) ID() string { return pt.Slug }

// SupportsAll reports whether every given feature is supported.
// No features is vacuously true.
func (pt *PostType) SupportsAll(features ...string) bool {
	for _, f := range features {
		if !pt.supports(f) {
			return false
		}
	}
	return true
}

func (pt *PostType) supports(feature string) bool {
	for _, s := range pt.Supports {
		if s == feature {
			return true
		}
	}
	return false
}

// AddSupport adds features that are not yet supported, keeping order.
func (pt *PostType) AddSupport(features ...string) {
	for _, f := range features {
		if f != "" && !pt.supports(f) {
			pt.Supports = append(pt.Supports, f)
		}
	}
}

// RemoveSupport drops the given features.
func (pt *PostType) RemoveSupport(features ...string) {
	drop := make(map[string]bool, len(features))
	for _, f := range features {
		drop[f] = true
	}
	kept := pt.Supports[:0]
	for _, s := range pt.Supports {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	pt.Supports = kept
}

// Validate checks that the post type can be registered.
func (pt *PostType) Validate() error {
	if !IsValidSlug(pt.Slug) {
		return ErrInvalidSlug
	}
	return nil
}

// IsValidSlug reports whether s is a non-empty slug of at most 20 lowercase
// letters, digits, dashes or underscores.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
