package model

// Test model classes.

type Book struct{ Post }

type Event struct{ Post }

type Dinosaur struct{ Post }

type ModelTestPostType struct{ Post }

type Genre struct{ Term }

type Color struct{ Term }

// Hybrid embeds both bases, so it belongs to neither family.
type Hybrid struct {
	Post
	Term
}

// PointerGenre embeds the base through a pointer, which a new value
// leaves nil.
type PointerGenre struct{ *Term }

// PointerBook reaches Post through a pointer to another model.
type PointerBook struct{ *Book }

// Hardcover reaches Post through Book by value.
type Hardcover struct{ Book }

// Plain embeds neither base.
type Plain struct {
	ID int64
}

var (
	bookClass     = MustRegisterContent[Book]("book")
	eventClass    = MustRegisterContent[Event]("event")
	dinosaurClass = MustRegisterContent[Dinosaur]("")
	modelPTClass  = MustRegisterContent[ModelTestPostType]("")
	genreClass    = MustRegisterTaxonomy[Genre]("genre")
	colorClass    = MustRegisterTaxonomy[Color]("color")
)

func book(id int64) *Book {
	b := &Book{}
	b.ID = id
	b.PostType = "book"
	return b
}

func genre(id int64, name string) *Genre {
	g := &Genre{}
	g.ID = id
	g.Taxonomy = "genre"
	g.Name = name
	return g
}
