package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/mesh-intelligence/silk/pkg/types"
)

var (
	contentIface  = reflect.TypeOf((*Content)(nil)).Elem()
	taxonomyIface = reflect.TypeOf((*Taxonomy)(nil)).Elem()
	postType      = reflect.TypeOf(Post{})
	termType      = reflect.TypeOf(Term{})
)

// Class is the static descriptor of an entity class: its family, the post
// type or taxonomy slug it represents, and the Go type hydrated for it.
// Classes are immutable once built.
type Class struct {
	name   string
	family Family
	slug   string
	goType reflect.Type
}

// Name returns the class name: the Go type name, or the slug for classes
// built with ContentClass or TaxonomyClass.
func (c *Class) Name() string { return c.name }

// Family returns the class family.
func (c *Class) Family() Family { return c.family }

// Slug returns the post type slug for content classes and the taxonomy slug
// for taxonomy classes.
func (c *Class) Slug() string { return c.slug }

// Type returns the Go struct type instances of the class hydrate into.
func (c *Class) Type() reflect.Type { return c.goType }

func (c *Class) String() string {
	return fmt.Sprintf("%s(%s %s)", c.name, c.family, c.slug)
}

// ContentClass returns a content class for slug that hydrates plain *Post
// values. It serves callers that only know post types at runtime.
func ContentClass(slug string) *Class {
	return &Class{name: slug, family: FamilyContent, slug: slug, goType: postType}
}

// TaxonomyClass returns a taxonomy class for slug that hydrates plain *Term
// values.
func TaxonomyClass(slug string) *Class {
	return &Class{name: slug, family: FamilyTaxonomy, slug: slug, goType: termType}
}

// Classify returns the family of class. It reads the descriptor only; no
// instance is built. Returns ErrUnresolvableEntityClass when the class is
// nil, has no family, or has no slug.
func Classify(class *Class) (Family, error) {
	if class == nil {
		return FamilyUnknown, fmt.Errorf("%w: nil class", types.ErrUnresolvableEntityClass)
	}
	switch class.family {
	case FamilyContent, FamilyTaxonomy:
	default:
		return FamilyUnknown, fmt.Errorf("%w: %s", types.ErrUnresolvableEntityClass, class.name)
	}
	if class.slug == "" {
		return FamilyUnknown, fmt.Errorf("%w: %s has no slug", types.ErrUnresolvableEntityClass, class.name)
	}
	return class.family, nil
}

// lineage reports the family a struct type belongs to by inspecting the
// method set of its pointer type. A type that satisfies both marker
// interfaces, or neither, has no family.
func lineage(t reflect.Type) Family {
	pt := reflect.PointerTo(t)
	isContent := pt.Implements(contentIface)
	isTaxonomy := pt.Implements(taxonomyIface)
	switch {
	case isContent && !isTaxonomy:
		return FamilyContent
	case isTaxonomy && !isContent:
		return FamilyTaxonomy
	default:
		return FamilyUnknown
	}
}

// embedsValue reports whether t is base or reaches it through anonymous
// struct fields only. A new t then holds a usable base; an embedded pointer
// would be nil.
func embedsValue(t, base reflect.Type) bool {
	if t == base {
		return true
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && embedsValue(f.Type, base) {
			return true
		}
	}
	return false
}

// hydrate builds a new instance of the class around rec, which must be a
// *types.Post for content classes and a *types.Term for taxonomy classes.
func (c *Class) hydrate(rec any) (Entity, error) {
	v := reflect.New(c.goType).Interface()
	switch r := rec.(type) {
	case *types.Post:
		e, ok := v.(Content)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot hold a post", types.ErrTypeMismatch, c.name)
		}
		e.bindPost(r)
		return e, nil
	case *types.Term:
		e, ok := v.(Taxonomy)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot hold a term", types.ErrTypeMismatch, c.name)
		}
		e.bindTerm(r)
		return e, nil
	default:
		return nil, fmt.Errorf("%w: cannot hydrate %T", types.ErrInvalidData, rec)
	}
}

// Registry maps Go types to their class descriptors. It is safe for
// concurrent use; registration normally happens once at init.
type Registry struct {
	mu      sync.RWMutex
	classes map[reflect.Type]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[reflect.Type]*Class)}
}

// DefaultRegistry backs the package-level Register and ClassOf helpers.
var DefaultRegistry = NewRegistry()

// Register declares t as a class of the given family. t must be a struct
// type, or a pointer to one, embedding Post for FamilyContent or Term for
// FamilyTaxonomy. An empty slug is derived from the type name in snake case
// (Dinosaur becomes "dinosaur"). Registering the same type again replaces
// its descriptor.
func (r *Registry) Register(t reflect.Type, family Family, slug string) (*Class, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", types.ErrUnresolvableEntityClass)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", types.ErrUnresolvableEntityClass, t)
	}
	if got := lineage(t); got == FamilyUnknown || got != family {
		return nil, fmt.Errorf("%w: %s declared %s but embeds %s", types.ErrUnresolvableEntityClass, t, family, got)
	}
	base := postType
	if family == FamilyTaxonomy {
		base = termType
	}
	if !embedsValue(t, base) {
		return nil, fmt.Errorf("%w: %s must embed %s by value", types.ErrUnresolvableEntityClass, t, base.Name())
	}
	if slug == "" {
		slug = SnakeCase(t.Name())
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot derive a slug for %s", types.ErrUnresolvableEntityClass, t)
	}

	class := &Class{name: t.Name(), family: family, slug: slug, goType: t}
	r.mu.Lock()
	r.classes[t] = class
	r.mu.Unlock()
	return class, nil
}

// ClassFor returns the descriptor registered for t.
// Returns ErrUnresolvableEntityClass if t was never registered.
func (r *Registry) ClassFor(t reflect.Type) (*Class, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", types.ErrUnresolvableEntityClass)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	class, ok := r.classes[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", types.ErrUnresolvableEntityClass, t)
	}
	return class, nil
}

// RegisterContent registers T as a content class in the default registry.
func RegisterContent[T any](postTypeSlug string) (*Class, error) {
	return DefaultRegistry.Register(reflect.TypeFor[T](), FamilyContent, postTypeSlug)
}

// RegisterTaxonomy registers T as a taxonomy class in the default registry.
func RegisterTaxonomy[T any](taxonomySlug string) (*Class, error) {
	return DefaultRegistry.Register(reflect.TypeFor[T](), FamilyTaxonomy, taxonomySlug)
}

// MustRegisterContent is like RegisterContent but panics on error.
func MustRegisterContent[T any](postTypeSlug string) *Class {
	c, err := RegisterContent[T](postTypeSlug)
	if err != nil {
		panic(err)
	}
	return c
}

// MustRegisterTaxonomy is like RegisterTaxonomy but panics on error.
func MustRegisterTaxonomy[T any](taxonomySlug string) *Class {
	c, err := RegisterTaxonomy[T](taxonomySlug)
	if err != nil {
		panic(err)
	}
	return c
}

// ClassOf returns the class registered for T in the default registry.
func ClassOf[T any]() (*Class, error) {
	return DefaultRegistry.ClassFor(reflect.TypeFor[T]())
}

// SnakeCase converts a Go identifier to snake case. Acronym runs stay
// together: ModelTestPostType becomes model_test_post_type and HTTPEvent
// becomes http_event.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
