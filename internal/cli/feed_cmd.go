package cli

import (
	"fmt"
	"strconv"

	"digihub/internal/cli/formatter"
	"digihub/internal/client"
	"digihub/internal/model"

	"github.com/spf13/cobra"
)

func newFeedCmd(app *App) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "feed KIND ID",
		Short: "Show the activity feed of a project, module, submodule or task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := model.ParseEntityKind(args[0]); err != nil {
				return err
			}
			id, err := positiveInt(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := app.context()
			defer cancel()
			feed, err := app.Activity.Feed(ctx, args[0], id, page, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderFeed(feed))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Items per page (server default when 0)")
	return cmd
}

func newRepliesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "replies COMMENT_ID",
		Short: "Show the direct replies to a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveInt(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.context()
			defer cancel()
			replies, err := app.Activity.Replies(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderComments(replies))
			return nil
		},
	}
}

func newCommentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, edit or delete comments",
	}
	cmd.AddCommand(newCommentAddCmd(app), newCommentEditCmd(app), newCommentDeleteCmd(app))
	return cmd
}

func newCommentAddCmd(app *App) *cobra.Command {
	var parent int

	cmd := &cobra.Command{
		Use:   "add KIND ID TEXT",
		Short: "Comment on an entity, or reply with --parent",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := model.ParseEntityKind(args[0]); err != nil {
				return err
			}
			id, err := positiveInt(args[1])
			if err != nil {
				return err
			}
			in := client.NewComment{EntityType: args[0], EntityID: id, Content: args[2]}
			if cmd.Flags().Changed("parent") {
				in.ParentID = &parent
			}

			ctx, cancel := app.context()
			defer cancel()
			c, err := app.Activity.AddComment(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment #%d\n", c.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&parent, "parent", 0, "Reply to this comment id")
	return cmd
}

func newCommentEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit COMMENT_ID TEXT",
		Short: "Replace the text of your comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveInt(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.context()
			defer cancel()
			if _, err := app.Activity.EditComment(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated comment #%d\n", id)
			return nil
		},
	}
}

func newCommentDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COMMENT_ID",
		Short: "Delete a comment and all of its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveInt(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.context()
			defer cancel()
			if err := app.Activity.DeleteComment(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment #%d\n", id)
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print an access token for DIGIHUB_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.context()
			defer cancel()
			token, err := app.Auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}
