package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liner/internal/identity"
	"liner/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	mergeCmd := &cobra.Command{
		Use:   "merge",
		Short: "Analyze and execute identity merges",
	}

	mergeCmd.AddCommand(newMergeAnalyzeCommand(ctx))
	mergeCmd.AddCommand(newMergeRunCommand(ctx))

	return mergeCmd
}

func newMergeAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var allowKindMismatch bool

	cmd := &cobra.Command{
		Use:   "analyze <source-id> <target-id>",
		Short: "Classify a proposed merge without changing anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, targetID, err := parseIDPair(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				analyzer := merge.NewAnalyzer(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())

				impact, err := analyzer.Analyze(cmd.Context(), sourceID, targetID, allowKindMismatch)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, impact)
				}
				printImpact(cmd, impact)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&allowKindMismatch, "allow-kind-mismatch", false,
		"Grade a person/group merge instead of blocking it")
	return cmd
}

func newMergeRunCommand(ctx *commandContext) *cobra.Command {
	var (
		ackDataLoss       bool
		copyBiography     bool
		allowKindMismatch bool
	)

	cmd := &cobra.Command{
		Use:   "run <source-id> <target-id>",
		Short: "Merge the source identity into the target",
		Long: "Folds every name and membership of the source into the target inside one " +
			"transaction. A merge graded identity_merge refuses to run without " +
			"--ack-data-loss; recorded credit text never changes either way.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, targetID, err := parseIDPair(args)
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				logger := ctx.ensureLogger()
				analyzer := merge.NewAnalyzer(store, cfg.Resolver.MaxDepth, logger)
				executor := merge.NewExecutor(store, cfg.Resolver.MaxDepth, logger)

				impact, err := analyzer.Analyze(cmd.Context(), sourceID, targetID, allowKindMismatch)
				if err != nil {
					return err
				}

				result, err := executor.Merge(cmd.Context(), sourceID, targetID, impact, ackDataLoss,
					merge.Options{
						CopyBiography:     copyBiography,
						AllowKindMismatch: allowKindMismatch,
					})
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Merged identity %d into %d (%s)\n", sourceID, targetID, result.Tier)
				fmt.Fprintf(out, "  names moved: %d\n", result.NamesMoved)
				if result.MembershipsMoved+result.MembershipsDropped > 0 {
					fmt.Fprintf(out, "  memberships moved: %d, duplicates dropped: %d\n",
						result.MembershipsMoved, result.MembershipsDropped)
				}
				if result.BiographyCopied {
					fmt.Fprintln(out, "  biography fields copied into empty target fields")
				}
				if result.SourceRetired {
					fmt.Fprintf(out, "  source identity %d retired\n", sourceID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&ackDataLoss, "ack-data-loss", false,
		"Acknowledge that the source identity loses its independent existence")
	cmd.Flags().BoolVar(&copyBiography, "copy-biography", false,
		"Fill empty target biography fields from the source")
	cmd.Flags().BoolVar(&allowKindMismatch, "allow-kind-mismatch", false,
		"Permit a person/group merge; the target's kind wins")
	return cmd
}

func printImpact(cmd *cobra.Command, impact *merge.Impact) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Classification: %s\n", impact.Tier)
	for _, note := range impact.Notes {
		fmt.Fprintf(out, "  - %s\n", note)
	}
	if impact.Destructive() {
		fmt.Fprintln(out, "Run with --ack-data-loss to execute this merge.")
	}
}

func parseIDPair(args []string) (int64, int64, error) {
	sourceID, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	targetID, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return sourceID, targetID, nil
}
