package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liner/internal/identity"
	"liner/internal/merge"
)

func newMembershipCommand(ctx *commandContext) *cobra.Command {
	membershipCmd := &cobra.Command{
		Use:   "membership",
		Short: "Manage group membership edges",
	}

	membershipCmd.AddCommand(newMembershipAddCommand(ctx))
	membershipCmd.AddCommand(newMembershipRemoveCommand(ctx))

	return membershipCmd
}

func newMembershipAddCommand(ctx *commandContext) *cobra.Command {
	var (
		creditedAs int64
		beganOn    string
		endedOn    string
	)

	cmd := &cobra.Command{
		Use:   "add <member-id> <group-id>",
		Short: "Add a member to a group",
		Long: "Links a member identity into a group. The edge is refused if it would " +
			"make any identity transitively a member of itself.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, groupID, err := parseIDPair(args)
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				executor := merge.NewExecutor(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())

				membership, err := executor.AddMembership(cmd.Context(), identity.Membership{
					MemberIdentityID: memberID,
					GroupIdentityID:  groupID,
					CreditedAsNameID: creditedAs,
					BeganOn:          beganOn,
					EndedOn:          endedOn,
				})
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, membership)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added identity %d to group %d (membership %d)\n",
					memberID, groupID, membership.ID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&creditedAs, "credited-as", 0, "Name id this member is credited under within the group")
	cmd.Flags().StringVar(&beganOn, "began", "", "Membership start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endedOn, "ended", "", "Membership end date (YYYY-MM-DD)")
	return cmd
}

func newMembershipRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <membership-id>",
		Short: "Remove a membership edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				if err := store.DeleteMembership(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed membership %d\n", id)
				return nil
			})
		},
	}
}
