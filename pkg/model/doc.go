// Package model provides typed models over the host store: posts, terms,
// post types, and users, with query builders and relationship resolution.
//
// Model types embed Post or Term and are registered once with their family
// and slug:
//
//	type Book struct{ model.Post }
//	type Genre struct{ model.Term }
//
//	var (
//	    _ = model.MustRegisterContent[Book]("book")
//	    _ = model.MustRegisterTaxonomy[Genre]("genre")
//	)
//
// A Resolver then walks relationships in either direction:
//
//	genres, err := model.Related[Genre](ctx, resolver, book)
//	books, err := model.Related[Book](ctx, resolver, sciFi)
package model
