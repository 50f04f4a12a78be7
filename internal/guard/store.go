package guard

import (
	"context"

	"github.com/mesh-intelligence/silk/pkg/types"
)

func (g *Store) AssociatedTermIDs(ctx context.Context, contentID int64, taxonomy string) ([]int64, error) {
	return call(ctx, g, "associated term ids", func(ctx context.Context) ([]int64, error) {
		return g.next.AssociatedTermIDs(ctx, contentID, taxonomy)
	})
}

func (g *Store) AttachTerm(ctx context.Context, postID, termID int64) error {
	return exec(ctx, g, "attach term", func(ctx context.Context) error {
		return g.next.AttachTerm(ctx, postID, termID)
	})
}

func (g *Store) DetachTerm(ctx context.Context, postID, termID int64) error {
	return exec(ctx, g, "detach term", func(ctx context.Context) error {
		return g.next.DetachTerm(ctx, postID, termID)
	})
}

func (g *Store) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	return call(ctx, g, "get post", func(ctx context.Context) (*types.Post, error) {
		return g.next.GetPost(ctx, id)
	})
}

func (g *Store) SetPost(ctx context.Context, p *types.Post) (int64, error) {
	return call(ctx, g, "set post", func(ctx context.Context) (int64, error) {
		return g.next.SetPost(ctx, p)
	})
}

func (g *Store) DeletePost(ctx context.Context, id int64) error {
	return exec(ctx, g, "delete post", func(ctx context.Context) error {
		return g.next.DeletePost(ctx, id)
	})
}

func (g *Store) QueryPosts(ctx context.Context, q types.PostQuery) ([]*types.Post, error) {
	return call(ctx, g, "query posts", func(ctx context.Context) ([]*types.Post, error) {
		return g.next.QueryPosts(ctx, q)
	})
}

func (g *Store) GetTerm(ctx context.Context, id int64) (*types.Term, error) {
	return call(ctx, g, "get term", func(ctx context.Context) (*types.Term, error) {
		return g.next.GetTerm(ctx, id)
	})
}

func (g *Store) SetTerm(ctx context.Context, t *types.Term) (int64, error) {
	return call(ctx, g, "set term", func(ctx context.Context) (int64, error) {
		return g.next.SetTerm(ctx, t)
	})
}

func (g *Store) DeleteTerm(ctx context.Context, id int64) error {
	return exec(ctx, g, "delete term", func(ctx context.Context) error {
		return g.next.DeleteTerm(ctx, id)
	})
}

func (g *Store) FetchTerms(ctx context.Context, q types.TermQuery) ([]*types.Term, error) {
	return call(ctx, g, "fetch terms", func(ctx context.Context) ([]*types.Term, error) {
		return g.next.FetchTerms(ctx, q)
	})
}

func (g *Store) GetPostType(ctx context.Context, slug string) (*types.PostType, error) {
	return call(ctx, g, "get post type", func(ctx context.Context) (*types.PostType, error) {
		return g.next.GetPostType(ctx, slug)
	})
}

func (g *Store) SetPostType(ctx context.Context, pt *types.PostType) error {
	return exec(ctx, g, "set post type", func(ctx context.Context) error {
		return g.next.SetPostType(ctx, pt)
	})
}

func (g *Store) DeletePostType(ctx context.Context, slug string) error {
	return exec(ctx, g, "delete post type", func(ctx context.Context) error {
		return g.next.DeletePostType(ctx, slug)
	})
}

func (g *Store) ListPostTypes(ctx context.Context) ([]*types.PostType, error) {
	return call(ctx, g, "list post types", func(ctx context.Context) ([]*types.PostType, error) {
		return g.next.ListPostTypes(ctx)
	})
}

func (g *Store) GetUser(ctx context.Context, id int64) (*types.User, error) {
	return call(ctx, g, "get user", func(ctx context.Context) (*types.User, error) {
		return g.next.GetUser(ctx, id)
	})
}

func (g *Store) SetUser(ctx context.Context, u *types.User) (int64, error) {
	return call(ctx, g, "set user", func(ctx context.Context) (int64, error) {
		return g.next.SetUser(ctx, u)
	})
}

func (g *Store) DeleteUser(ctx context.Context, id int64) error {
	return exec(ctx, g, "delete user", func(ctx context.Context) error {
		return g.next.DeleteUser(ctx, id)
	})
}

func (g *Store) QueryUsers(ctx context.Context, q types.UserQuery) ([]*types.User, error) {
	return call(ctx, g, "query users", func(ctx context.Context) ([]*types.User, error) {
		return g.next.QueryUsers(ctx, q)
	})
}
