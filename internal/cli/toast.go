package cli

import (
	"fmt"
	"io"
	"sync"

	"digihub/internal/cli/formatter"
	"digihub/internal/tree"
)

// Toaster prints editor notifications to w.
type Toaster struct {
	mu sync.Mutex
	w  io.Writer
}

func NewToaster(w io.Writer) *Toaster {
	return &Toaster{w: w}
}

func (t *Toaster) Toast(level tree.ToastLevel, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch level {
	case tree.ToastError:
		fmt.Fprintln(t.w, formatter.StyleRed.Render("✖ "+message))
	default:
		fmt.Fprintln(t.w, formatter.StyleGreen.Render("✔ "+message))
	}
}
