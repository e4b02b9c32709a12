package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liner/internal/conflict"
	"liner/internal/identity"
	"liner/internal/merge"
)

func newNameCommand(ctx *commandContext) *cobra.Command {
	nameCmd := &cobra.Command{
		Use:   "name",
		Short: "Create, re-parent, and split credit names",
	}

	nameCmd.AddCommand(newNameCreateCommand(ctx))
	nameCmd.AddCommand(newNameReparentCommand(ctx))
	nameCmd.AddCommand(newNameSplitCommand(ctx))

	return nameCmd
}

func newNameCreateCommand(ctx *commandContext) *cobra.Command {
	var ownerID int64

	cmd := &cobra.Command{
		Use:   "create <text>",
		Short: "Create a name, or find the existing one with this exact text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				executor := merge.NewExecutor(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())

				name, err := executor.CreateOrFindName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ownerID != 0 && name.OwnerIdentityID == 0 {
					if _, err := executor.ReparentName(cmd.Context(), name.ID, ownerID); err != nil {
						return err
					}
					name.OwnerIdentityID = ownerID
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, name)
				}
				if name.Orphaned() {
					fmt.Fprintf(cmd.OutOrStdout(), "Name %d %q (orphaned)\n", name.ID, name.Text)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Name %d %q owned by identity %d\n",
						name.ID, name.Text, name.OwnerIdentityID)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Assign the name to this identity if it is orphaned")
	return cmd
}

func newNameReparentCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reparent <name-id> <new-owner-id>",
		Short: "Move a name to a new owning identity",
		Long: "Moves ownership of one name. Credits keep displaying the same text; " +
			"they simply resolve to the new owner. Use new-owner-id 0 to orphan the name.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var newOwnerID int64
			if args[1] != "0" {
				newOwnerID, err = parseID(args[1])
				if err != nil {
					return err
				}
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}

				if newOwnerID != 0 && !force {
					name, err := store.GetName(cmd.Context(), nameID)
					if err != nil {
						return err
					}
					detector := conflict.NewDetector(store, cfg.Resolver.MaxDepth)
					hit, err := detector.WouldCollide(cmd.Context(), name.Text, newOwnerID)
					if err != nil {
						return err
					}
					if hit != nil && hit.ID != nameID {
						return fmt.Errorf("name %q collides with name %d owned by identity %d (use --force to proceed)",
							name.Text, hit.ID, hit.OwnerIdentityID)
					}
				}

				executor := merge.NewExecutor(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())
				result, err := executor.ReparentName(cmd.Context(), nameID, newOwnerID)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				if result.NamesMoved == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Name %d already belongs to identity %d\n", nameID, newOwnerID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved name %d to identity %d\n", nameID, newOwnerID)
				if result.SourceRetired {
					fmt.Fprintf(cmd.OutOrStdout(), "Retired now-empty identity %d\n", result.SourceIdentityID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the normalized collision check")
	return cmd
}

func newNameSplitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "split <name-id>",
		Short: "Carve a name out into a fresh identity",
		Long: "Creates a new identity and moves exactly one name to it. No credit rows " +
			"are touched; recordings keep displaying the same text.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				executor := merge.NewExecutor(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())

				newID, result, err := executor.SplitName(cmd.Context(), nameID)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"new_identity_id": newID,
						"result":          result,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Split name %d into new identity %d\n", nameID, newID)
				return nil
			})
		},
	}
}
