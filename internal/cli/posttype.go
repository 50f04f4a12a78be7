package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

func newPostTypeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "posttype",
		Aliases: []string{"post-type"},
		Short:   "Register and inspect post types",
	}
	cmd.AddCommand(newPostTypeRegisterCmd(a))
	cmd.AddCommand(newPostTypeShowCmd(a))
	cmd.AddCommand(newPostTypeListCmd(a))
	cmd.AddCommand(newPostTypeUnregisterCmd(a))
	cmd.AddCommand(newPostTypeSupportsCmd(a))
	cmd.AddCommand(newPostTypeLoadCmd(a))
	return cmd
}

func newPostTypeRegisterCmd(a *app) *cobra.Command {
	var (
		one, many string
		supports  []string
		public    bool
	)
	cmd := &cobra.Command{
		Use:   "register <slug>",
		Short: "Register a post type",
		Long: `Register a post type. The singular label defaults to the slug and the
plural to the singular plus "s".

Example:
  silk posttype register book --one Book --many Books --supports title,editor`,
		Args: cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pt, err := model.NewPostTypes(s.store).Builder(args[0]).
				One(one).Many(many).Supports(supports...).Public(public).
				Register(cmd.Context())
			if err != nil {
				return err
			}
			return a.printPostTypes(cmd.OutOrStdout(), []*model.PostType{pt}, true)
		}),
	}
	cmd.Flags().StringVar(&one, "one", "", "singular label")
	cmd.Flags().StringVar(&many, "many", "", "plural label")
	cmd.Flags().StringSliceVar(&supports, "supports", nil, "supported features")
	cmd.Flags().BoolVar(&public, "public", false, "publicly queryable")
	return cmd
}

func newPostTypeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a registered post type",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pt, err := model.NewPostTypes(s.store).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printPostTypes(cmd.OutOrStdout(), []*model.PostType{pt}, true)
		}),
	}
}

func newPostTypeListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered post types",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pts, err := model.NewPostTypes(s.store).List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printPostTypes(cmd.OutOrStdout(), pts, false)
		}),
	}
}

func newPostTypeUnregisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <slug>",
		Short: "Remove a registered post type",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pt, err := model.NewPostTypes(s.store).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := pt.Unregister(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unregistered post type %s\n", pt.Slug)
			return nil
		}),
	}
}

func newPostTypeSupportsCmd(a *app) *cobra.Command {
	var add, remove bool
	cmd := &cobra.Command{
		Use:   "supports <slug> <feature>...",
		Short: "Check, add or remove supported features",
		Long: `Without flags, report whether the post type supports every listed feature
and exit 1 if it does not. --add and --remove change the feature set.

Example:
  silk posttype supports book title editor
  silk posttype supports book thumbnail --add`,
		Args: cobra.MinimumNArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			if add && remove {
				return fmt.Errorf("%w: give one of --add or --remove", errUsage)
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pt, err := model.NewPostTypes(s.store).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			features := args[1:]
			out := cmd.OutOrStdout()
			switch {
			case add:
				if err := pt.AddSupportFor(cmd.Context(), features...); err != nil {
					return err
				}
				return a.printPostTypes(out, []*model.PostType{pt}, true)
			case remove:
				if err := pt.RemoveSupportFor(cmd.Context(), features...); err != nil {
					return err
				}
				return a.printPostTypes(out, []*model.PostType{pt}, true)
			}

			if a.flags.jsonMode {
				if err := printJSON(out, map[string]bool{"supported": pt.SupportsAll(features...)}); err != nil {
					return err
				}
			}
			if !pt.SupportsAll(features...) {
				return &exitError{code: exitUserError, err: fmt.Errorf("%s does not support %s", pt.Slug, strings.Join(features, ", "))}
			}
			if !a.flags.jsonMode {
				fmt.Fprintf(out, "%s supports %s\n", pt.Slug, strings.Join(features, ", "))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&add, "add", false, "add the features")
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the features")
	return cmd
}

// postTypeManifest is the YAML document posttype load reads.
type postTypeManifest struct {
	PostTypes []types.PostType `yaml:"post_types"`
}

func newPostTypeLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Register the post types listed in a YAML file",
		Long: `Register every post type in a YAML manifest. Post types that are already
registered are skipped.

Example manifest:
  post_types:
    - slug: book
      one: Book
      many: Books
      supports: [title, editor]
      public: true`,
		Args: cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: read manifest: %v", errUsage, err)
			}
			var manifest postTypeManifest
			if err := yaml.Unmarshal(data, &manifest); err != nil {
				return fmt.Errorf("%w: parse manifest %s: %v", errUsage, args[0], err)
			}

			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			pts := model.NewPostTypes(s.store)
			out := cmd.OutOrStdout()
			for _, def := range manifest.PostTypes {
				existing, builder, err := pts.Make(cmd.Context(), def.Slug)
				if err != nil {
					return err
				}
				if existing != nil {
					fmt.Fprintf(out, "Skipped %s (already registered)\n", def.Slug)
					continue
				}
				pt, err := builder.One(def.One).Many(def.Many).Supports(def.Supports...).Public(def.Public).Register(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Registered %s\n", pt.Slug)
			}
			return nil
		}),
	}
}

func (a *app) printPostTypes(w io.Writer, pts []*model.PostType, single bool) error {
	recs := make([]*types.PostType, len(pts))
	for i, pt := range pts {
		recs[i] = &pt.PostType
	}
	if a.flags.jsonMode {
		if single && len(recs) == 1 {
			return printJSON(w, recs[0])
		}
		return printJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No post types registered.")
		return nil
	}
	rows := make([][]string, len(recs))
	for i, pt := range recs {
		rows[i] = []string{pt.Slug, pt.One, pt.Many, strings.Join(pt.Supports, ","), fmt.Sprint(pt.Public)}
	}
	printTable(w, []string{"SLUG", "ONE", "MANY", "SUPPORTS", "PUBLIC"}, rows)
	return nil
}
