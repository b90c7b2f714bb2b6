package cli

import (
	"fmt"

	"digihub/internal/cli/formatter"
	"digihub/internal/tree"

	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show and edit the group/project/module/task tree",
	}
	cmd.AddCommand(
		newTreeShowCmd(app),
		newTreeMoveCmd(app),
		newTreeCreateCmd(app),
		newTreeRenameCmd(app),
		newTreeDeleteCmd(app),
	)
	return cmd
}

func parseNode(s string) (tree.NodeID, error) {
	ref, err := tree.ParseID(tree.NodeID(s))
	if err != nil {
		return "", err
	}
	return ref.NodeID(), nil
}

func newTreeShowCmd(app *App) *cobra.Command {
	var expandAll bool
	var expand []string
	var selectID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.context()
			defer cancel()
			if err := app.Tree.Reload(ctx); err != nil {
				return err
			}

			if expandAll {
				app.Tree.ExpandAll()
			}
			for _, s := range expand {
				id, err := parseNode(s)
				if err != nil {
					return err
				}
				app.Tree.Toggle(id)
			}
			if selectID != "" {
				id, err := parseNode(selectID)
				if err != nil {
					return err
				}
				if err := app.Tree.Select(id); err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTree(app.Tree.Rows()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand every node")
	cmd.Flags().StringSliceVar(&expand, "toggle", nil, "Toggle these node ids (e.g. project-3)")
	cmd.Flags().StringVar(&selectID, "select", "", "Highlight this node id")
	return cmd
}

func newTreeMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move NODE TARGET",
		Short: "Reparent NODE under TARGET (e.g. move task-4 module-2)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNode(args[0])
			if err != nil {
				return err
			}
			target, err := parseNode(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := app.context()
			defer cancel()
			if err := app.Tree.Reload(ctx); err != nil {
				return err
			}
			app.Tree.DragStart(node)
			app.Tree.DragOver(target)
			return app.Tree.Drop(ctx, target)
		},
	}
}

func newTreeCreateCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "create KIND NAME",
		Short: "Create a group, project, module or task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := tree.ParseKind(args[0])
			if err != nil {
				return err
			}
			var parentID tree.NodeID
			if parent != "" {
				if parentID, err = parseNode(parent); err != nil {
					return err
				}
			}

			ctx, cancel := app.context()
			defer cancel()
			if err := app.Tree.Reload(ctx); err != nil {
				return err
			}
			return app.Tree.Create(ctx, kind, parentID, args[1])
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node id (e.g. module-2)")
	return cmd
}

func newTreeRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename NODE NAME",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNode(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.context()
			defer cancel()
			if err := app.Tree.Reload(ctx); err != nil {
				return err
			}
			return app.Tree.Rename(ctx, node, args[1])
		},
	}
}

func newTreeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NODE",
		Short: "Delete a node and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNode(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.context()
			defer cancel()
			if err := app.Tree.Reload(ctx); err != nil {
				return err
			}
			return app.Tree.Delete(ctx, node)
		},
	}
}
