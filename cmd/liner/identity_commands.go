package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"liner/internal/identity"
)

func newIdentityCommand(ctx *commandContext) *cobra.Command {
	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect and create contributor identities",
	}

	identityCmd.AddCommand(newIdentityListCommand(ctx))
	identityCmd.AddCommand(newIdentityShowCommand(ctx))
	identityCmd.AddCommand(newIdentityCreateCommand(ctx))

	return identityCmd
}

func newIdentityListCommand(ctx *commandContext) *cobra.Command {
	var includeRetired bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *identity.Store) error {
				identities, err := store.ListIdentities(cmd.Context(), includeRetired)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, identities)
				}

				rows := make([][]string, 0, len(identities))
				for _, ident := range identities {
					primary := ""
					names, err := store.NamesOwnedBy(cmd.Context(), ident.ID)
					if err != nil {
						return err
					}
					if len(names) > 0 {
						primary = names[0].Text
					}
					status := ""
					if ident.Retired {
						status = "retired"
					}
					rows = append(rows, []string{
						strconv.FormatInt(ident.ID, 10),
						string(ident.Kind),
						primary,
						strconv.Itoa(len(names)),
						status,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Kind", "Primary Name", "Names", "Status"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeRetired, "all", false, "Include retired identities")
	return cmd
}

func newIdentityShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one identity with its names and memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *identity.Store) error {
				ident, err := store.GetIdentity(cmd.Context(), id)
				if err != nil {
					return err
				}
				names, err := store.NamesOwnedBy(cmd.Context(), id)
				if err != nil {
					return err
				}
				memberOf, err := store.MembershipsForMember(cmd.Context(), id)
				if err != nil {
					return err
				}
				members, err := store.MembershipsForGroup(cmd.Context(), id)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"identity":  ident,
						"names":     names,
						"member_of": memberOf,
						"members":   members,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Identity %d (%s)", ident.ID, ident.Kind)
				if ident.Retired {
					fmt.Fprint(out, " [retired]")
				}
				fmt.Fprintln(out)
				if ident.Biography.IsSet() {
					fmt.Fprintf(out, "  born: %s  died: %s  area: %s\n",
						valueOrDash(ident.Biography.BornOn),
						valueOrDash(ident.Biography.DiedOn),
						valueOrDash(ident.Biography.Area))
					if ident.Biography.Annotation != "" {
						fmt.Fprintf(out, "  note: %s\n", ident.Biography.Annotation)
					}
				}
				for _, name := range names {
					marker := ""
					if name.Primary {
						marker = " (primary)"
					}
					fmt.Fprintf(out, "  name %d: %s%s\n", name.ID, name.Text, marker)
				}
				for _, m := range memberOf {
					fmt.Fprintf(out, "  member of identity %d\n", m.GroupIdentityID)
				}
				for _, m := range members {
					fmt.Fprintf(out, "  has member identity %d\n", m.MemberIdentityID)
				}
				return nil
			})
		},
	}
}

func newIdentityCreateCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "create <primary name>",
		Short: "Create an identity with a primary name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := identity.ParseKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown kind %q (person or group)", kindFlag)
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				var created *identity.Identity
				err := store.InTx(cmd.Context(), func(tx *identity.Tx) error {
					ident, err := tx.CreateIdentity(cmd.Context(), kind, identity.Biography{})
					if err != nil {
						return err
					}
					if _, err := tx.CreateName(cmd.Context(), args[0], ident.ID, true); err != nil {
						return err
					}
					created = ident
					return nil
				})
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s identity %d with primary name %q\n",
					created.Kind, created.ID, args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "person", "Identity kind: person or group")
	return cmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
