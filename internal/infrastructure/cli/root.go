// Package cli wires the cobra command tree over the application container.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"shopmate/internal/app"
)

// NewRootCmd builds the container and the command tree.
func NewRootCmd(ctx context.Context) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "shopmate",
		Short: "ShopMate - retail support assistant backend",
		Long: "ShopMate serves the browser support assistant: conversation storage,\n" +
			"policy-checked content retrieval and AI provider orchestration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(container))
	root.AddCommand(newChatCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newClearCommand(container))
	root.AddCommand(newConfigCommand(container))
	return root, nil
}
