package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

func newPostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create, inspect, list and delete posts",
	}
	cmd.AddCommand(newPostCreateCmd(a))
	cmd.AddCommand(newPostGetCmd(a))
	cmd.AddCommand(newPostListCmd(a))
	cmd.AddCommand(newPostDeleteCmd(a))
	return cmd
}

func newPostCreateCmd(a *app) *cobra.Command {
	var (
		postType, title, name, status, content string
		author                                 int64
		fields                                 []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long: `Create a post of the given post type. Field values given with --field
are decoded as JSON when possible.

Example:
  silk post create --type book --title Dune --field isbn=0441013597 --field pages=412`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			e, err := s.repo.New(model.ContentClass(postType))
			if err != nil {
				return err
			}
			rec := e.(model.Content).PostRecord()
			rec.Title = title
			rec.Name = name
			rec.Content = content
			rec.AuthorID = author
			if status != "" {
				rec.Status = status
			}
			for _, f := range fields {
				key, value, err := parseKeyValue(f)
				if err != nil {
					return err
				}
				rec.SetField(key, value)
			}

			if _, err := s.repo.Save(cmd.Context(), e); err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			return a.printPost(cmd.OutOrStdout(), rec)
		}),
	}
	cmd.Flags().StringVar(&postType, "type", "", "post type slug (required)")
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&name, "name", "", "URL slug")
	cmd.Flags().StringVar(&status, "status", "", "status (draft, pending, publish, private, trash)")
	cmd.Flags().StringVar(&content, "content", "", "post body")
	cmd.Flags().Int64Var(&author, "author", 0, "author user id")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newPostGetCmd(a *app) *cobra.Command {
	var postType string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post",
		Long: `Show a post by id. With --type the post must be of that post type.

Example:
  silk post get 12
  silk post get 12 --type book --json`,
		Args: cobra.ExactArgs(1),
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

			var rec *types.Post
			if postType != "" {
				e, err := s.repo.FromID(cmd.Context(), model.ContentClass(postType), id)
				if err != nil {
					return err
				}
				rec = e.(model.Content).PostRecord()
			} else {
				rec, err = s.store.GetPost(cmd.Context(), id)
				if err != nil {
					return types.NewStoreError(fmt.Sprintf("get post %d", id), err)
				}
			}
			return a.printPost(cmd.OutOrStdout(), rec)
		}),
	}
	cmd.Flags().StringVar(&postType, "type", "", "expected post type")
	return cmd
}

func newPostListCmd(a *app) *cobra.Command {
	var (
		postType, search, orderBy, order string
		statuses, terms, fields          []string
		author                           int64
		limit, offset                    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Long: `List posts newest first, optionally filtered.

Example:
  silk post list --type book
  silk post list --term genre=3,4 --status publish
  silk post list --field isbn=0441013597 --order-by title --order ASC`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			q := model.NewQuery(s.store).Search(search).Limit(limit).Offset(offset)
			if postType != "" {
				q.Type(postType)
			}
			if len(statuses) > 0 {
				q.Status(statuses...)
			}
			if author != 0 {
				q.Author(author)
			}
			if orderBy != "" || order != "" {
				q.OrderBy(orderBy, order)
			}
			for _, t := range terms {
				taxonomy, ids, err := parseTermFilter(t)
				if err != nil {
					return err
				}
				q.WithFilter(model.TermIn(taxonomy, ids...))
			}
			for _, f := range fields {
				key, value, err := parseKeyValue(f)
				if err != nil {
					return err
				}
				q.WithFilter(model.FieldEquals(key, value))
			}

			entities, err := q.Execute(cmd.Context())
			if err != nil {
				return err
			}
			posts, err := model.Collect[model.Post](entities)
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
	cmd.Flags().StringVar(&postType, "type", "", "post type slug")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "statuses to include")
	cmd.Flags().StringVar(&search, "search", "", "match title or content")
	cmd.Flags().Int64Var(&author, "author", 0, "author user id")
	cmd.Flags().StringArrayVar(&terms, "term", nil, "taxonomy=id[,id...] membership (repeatable)")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field key=value equality (repeatable)")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "date, modified, title or id")
	cmd.Flags().StringVar(&order, "order", "", "ASC or DESC")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	return cmd
}

func newPostDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post and its term associations",
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

			if err := s.store.DeletePost(cmd.Context(), id); err != nil {
				return types.NewStoreError(fmt.Sprintf("delete post %d", id), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %d\n", id)
			return nil
		}),
	}
}

func (a *app) printPost(w io.Writer, p *types.Post) error {
	if a.flags.jsonMode {
		return printJSON(w, p)
	}
	printTable(w, []string{"FIELD", "VALUE"}, [][]string{
		{"id", strconv.FormatInt(p.ID, 10)},
		{"type", p.PostType},
		{"title", p.Title},
		{"name", p.Name},
		{"status", p.Status},
		{"guid", p.GUID},
		{"author", strconv.FormatInt(p.AuthorID, 10)},
		{"date", p.Date.Format(time.RFC3339)},
		{"modified", p.Modified.Format(time.RFC3339)},
	})
	for _, key := range sortedKeys(p.Fields) {
		fmt.Fprintf(w, "field %s = %v\n", key, p.Fields[key])
	}
	return nil
}

func (a *app) printPosts(w io.Writer, posts []*types.Post) error {
	if a.flags.jsonMode {
		return printJSON(w, posts)
	}
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts found.")
		return nil
	}
	rows := make([][]string, len(posts))
	for i, p := range posts {
		rows[i] = []string{strconv.FormatInt(p.ID, 10), p.PostType, p.Status, truncate(p.Title, 40), day(p.Date)}
	}
	printTable(w, []string{"ID", "TYPE", "STATUS", "TITLE", "DATE"}, rows)
	fmt.Fprintf(w, "Total: %d post(s)\n", len(posts))
	return nil
}
