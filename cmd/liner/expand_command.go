package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"liner/internal/identity"
	"liner/internal/resolve"
)

func newExpandCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <name or text>...",
		Short: "Expand search terms into every equivalent credit name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *identity.Store) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				resolver := resolve.NewResolver(store, cfg.Resolver.MaxDepth, ctx.ensureLogger())
				session := resolver.NewSession()

				texts, err := session.ExpandAll(cmd.Context(), args)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"query": strings.Join(args, ", "),
						"names": texts,
					})
				}
				for _, text := range texts {
					fmt.Fprintln(cmd.OutOrStdout(), text)
				}
				return nil
			})
		},
	}
}
