package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// Source kinds for the related command.
const (
	sourcePost = "post"
	sourceTerm = "term"
)

func newRelatedCmd(a *app) *cobra.Command {
	var taxonomy, postType string
	cmd := &cobra.Command{
		Use:   "related <post|term> <id>",
		Short: "Resolve the entities related to a post or a term",
		Long: `Resolve related entities. From a post, --taxonomy lists the terms of that
taxonomy attached to it. From a term, --type lists the posts of that post type
tagged with it, newest first.

Example:
  silk related post 12 --taxonomy genre
  silk related term 3 --type book`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{sourcePost, sourceTerm},
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			var target *model.Class
			switch {
			case taxonomy != "" && postType != "":
				return fmt.Errorf("%w: give one of --taxonomy or --type", errUsage)
			case taxonomy != "":
				target = model.TaxonomyClass(taxonomy)
			case postType != "":
				target = model.ContentClass(postType)
			default:
				return fmt.Errorf("%w: --taxonomy or --type is required", errUsage)
			}

			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			source, err := loadSource(cmd, s, args[0], id)
			if err != nil {
				return err
			}
			related, err := s.repo.Related(cmd.Context(), source, target)
			if err != nil {
				return err
			}

			if target.Family() == model.FamilyTaxonomy {
				terms, err := model.Collect[model.Term](related)
				if err != nil {
					return err
				}
				recs := make([]*types.Term, len(terms))
				for i, t := range terms {
					recs[i] = t.TermRecord()
				}
				return a.printTerms(cmd.OutOrStdout(), recs, false)
			}
			posts, err := model.Collect[model.Post](related)
			if err != nil {
				return err
			}
			recs := make([]*types.Post, len(posts))
			for i, p := range posts {
				recs[i] = p.PostRecord()
			}
			return a.printPosts(cmd.OutOrStdout(), recs)
		}),
	}
	cmd.Flags().StringVar(&taxonomy, "taxonomy", "", "resolve the terms of this taxonomy")
	cmd.Flags().StringVar(&postType, "type", "", "resolve the posts of this post type")
	return cmd
}

// loadSource hydrates the source entity under the class of its own record.
func loadSource(cmd *cobra.Command, s *session, kind string, id int64) (model.Entity, error) {
	ctx := cmd.Context()
	switch kind {
	case sourcePost:
		rec, err := s.store.GetPost(ctx, id)
		if err != nil {
			return nil, types.NewStoreError(fmt.Sprintf("get post %d", id), err)
		}
		return s.repo.FromID(ctx, model.ContentClass(rec.PostType), id)
	case sourceTerm:
		rec, err := s.store.GetTerm(ctx, id)
		if err != nil {
			return nil, types.NewStoreError(fmt.Sprintf("get term %d", id), err)
		}
		return s.repo.FromID(ctx, model.TaxonomyClass(rec.Taxonomy), id)
	default:
		return nil, fmt.Errorf("%w: source must be %q or %q, got %q", errUsage, sourcePost, sourceTerm, kind)
	}
}
