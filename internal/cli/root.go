package cli

import (
	"context"
	"time"

	"digihub/internal/client"
	"digihub/internal/model"
	"digihub/internal/tree"

	"github.com/spf13/cobra"
)

// ActivityAPI is the feed and comment surface used by the CLI.
type ActivityAPI interface {
	Feed(ctx context.Context, entityType string, entityID, page, limit int) (*model.Feed, error)
	Replies(ctx context.Context, commentID int) ([]model.Comment, error)
	AddComment(ctx context.Context, in client.NewComment) (*model.Comment, error)
	EditComment(ctx context.Context, commentID int, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID int) error
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// App holds everything the commands talk to.
type App struct {
	Tree     *tree.Editor
	Activity ActivityAPI
	Auth     Authenticator
	Timeout  time.Duration
}

func (a *App) context() (context.Context, context.CancelFunc) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = tree.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// NewRootCmd creates the top-level "digihub" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "digihub",
		Short:         "DigiHub project tree and activity feed",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTreeCmd(app),
		newFeedCmd(app),
		newRepliesCmd(app),
		newCommentCmd(app),
		newLoginCmd(app),
	)
	return root
}
