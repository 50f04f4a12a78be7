package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(a))
	cmd.AddCommand(newUserListCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var u types.User
	cmd := &cobra.Command{
		Use:   "create <login>",
		Short: "Create a user",
		Long: `Create a user account.

Example:
  silk user create ann --email ann@example.com --role editor --role author`,
		Args: cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			u.Login = args[0]
			if err := u.Validate(); err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			if _, err := s.store.SetUser(cmd.Context(), &u); err != nil {
				return types.NewStoreError("create user", err)
			}
			return a.printUsers(cmd.OutOrStdout(), []*types.User{&u}, true)
		}),
	}
	cmd.Flags().StringVar(&u.Email, "email", "", "email address")
	cmd.Flags().StringVar(&u.DisplayName, "display-name", "", "display name")
	cmd.Flags().StringArrayVar(&u.Roles, "role", nil, "role (repeatable)")
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	var q types.UserQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users ordered by login",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer a.close(s)

			users, err := model.NewUserQueryFrom(s.store, q).Results(cmd.Context())
			if err != nil {
				return err
			}
			recs := make([]*types.User, len(users))
			for i, u := range users {
				recs[i] = &u.User
			}
			return a.printUsers(cmd.OutOrStdout(), recs, false)
		}),
	}
	cmd.Flags().StringVar(&q.Role, "role", "", "only users holding this role")
	cmd.Flags().StringVar(&q.Search, "search", "", "match login, email or display name")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results (0 = no limit)")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "results to skip")
	return cmd
}

func (a *app) printUsers(w io.Writer, users []*types.User, single bool) error {
	if a.flags.jsonMode {
		if single && len(users) == 1 {
			return printJSON(w, users[0])
		}
		return printJSON(w, users)
	}
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return nil
	}
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{strconv.FormatInt(u.ID, 10), u.Login, u.Email, strings.Join(u.Roles, ",")}
	}
	printTable(w, []string{"ID", "LOGIN", "EMAIL", "ROLES"}, rows)
	return nil
}
