package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

func newTermCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Manage taxonomy terms and their post associations",
	}
	cmd.AddCommand(newTermCreateCmd(a))
	cmd.AddCommand(newTermGetCmd(a))
	cmd.AddCommand(newTermListCmd(a))
	cmd.AddCommand(newTermDeleteCmd(a))
	cmd.AddCommand(newTermAttachCmd(a, true))
	cmd.AddCommand(newTermAttachCmd(a, false))
	return cmd
}

func newTermCreateCmd(a *app) *cobra.Command {
	var (
		taxonomy, name, slug, description string
		parent                            int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a term",
		Long: `Create a term in a taxonomy. The slug is derived from the name unless given.

Example:
  silk term create --taxonomy genre --name "Science Fiction"`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			e, err := s.repo.New(model.TaxonomyClass(taxonomy))
			if err != nil {
				return err
			}
			rec := e.(model.Taxonomy).TermRecord()
			rec.Name = name
			rec.Slug = slug
			rec.Description = description
			rec.ParentID = parent

			if _, err := s.repo.Save(cmd.Context(), e); err != nil {
				return fmt.Errorf("create term: %w", err)
			}
			return a.printTerms(cmd.OutOrStdout(), []*types.Term{rec}, true)
		}),
	}
	cmd.Flags().StringVar(&taxonomy, "taxonomy", "", "taxonomy slug (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&slug, "slug", "", "term slug")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent term id")
	_ = cmd.MarkFlagRequired("taxonomy")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTermGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a term",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			t, err := s.store.GetTerm(cmd.Context(), id)
			if err != nil {
				return types.NewStoreError(fmt.Sprintf("get term %d", id), err)
			}
			return a.printTerms(cmd.OutOrStdout(), []*types.Term{t}, true)
		}),
	}
}

func newTermListCmd(a *app) *cobra.Command {
	var q types.TermQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List terms ordered by name",
		Long: `List terms ordered by name.

Example:
  silk term list --taxonomy genre`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			terms, err := s.store.FetchTerms(cmd.Context(), q)
			if err != nil {
				return types.NewStoreError("fetch terms", err)
			}
			return a.printTerms(cmd.OutOrStdout(), terms, false)
		}),
	}
	cmd.Flags().StringVar(&q.Taxonomy, "taxonomy", "", "taxonomy slug")
	cmd.Flags().StringVar(&q.Slug, "slug", "", "term slug")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results (0 = no limit)")
	return cmd
}

func newTermDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a term and its post associations",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			if err := s.store.DeleteTerm(cmd.Context(), id); err != nil {
				return types.NewStoreError(fmt.Sprintf("delete term %d", id), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted term %d\n", id)
			return nil
		}),
	}
}

// newTermAttachCmd builds "attach" when attach is true and "detach" otherwise.
func newTermAttachCmd(a *app, attach bool) *cobra.Command {
	use, short, done := "detach", "Remove a term from a post", "Detached"
	if attach {
		use, short, done = "attach", "Tag a post with a term", "Attached"
	}
	return &cobra.Command{
		Use:   use + " <post-id> <term-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			termID, err := parseID(args[1])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			if attach {
				err = s.store.AttachTerm(cmd.Context(), postID, termID)
			} else {
				err = s.store.DetachTerm(cmd.Context(), postID, termID)
			}
			if err != nil {
				return types.NewStoreError(use+" term", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s term %d and post %d\n", done, termID, postID)
			return nil
		}),
	}
}

func (a *app) printTerms(w io.Writer, terms []*types.Term, single bool) error {
	if a.flags.jsonMode {
		if single && len(terms) == 1 {
			return printJSON(w, terms[0])
		}
		return printJSON(w, terms)
	}
	if len(terms) == 0 {
		fmt.Fprintln(w, "No terms found.")
		return nil
	}
	rows := make([][]string, len(terms))
	for i, t := range terms {
		parent := "-"
		if t.ParentID != 0 {
			parent = strconv.FormatInt(t.ParentID, 10)
		}
		rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Taxonomy, t.Slug, truncate(t.Name, 40), parent}
	}
	printTable(w, []string{"ID", "TAXONOMY", "SLUG", "NAME", "PARENT"}, rows)
	return nil
}
