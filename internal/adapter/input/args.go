package input

import (
	"context"

	"github.com/jmylchreest/flashui/internal/model"
)

// ArgsAdapter turns command line arguments into notifications, one per argument.
type ArgsAdapter struct {
	args []string
}

// NewArgsAdapter creates a new ArgsAdapter.
func NewArgsAdapter(args []string) *ArgsAdapter {
	return &ArgsAdapter{args: args}
}

// Name returns the adapter identifier.
func (a *ArgsAdapter) Name() string {
	return "args"
}

// Import converts each argument. An argument may start with a category
// prefix such as "success:" or "error:". Blank arguments are skipped.
func (a *ArgsAdapter) Import(ctx context.Context) ([]*model.Notification, error) {
	var notifications []*model.Notification
	for _, arg := range a.args {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		category, text := ParseMessage(arg)
		n, err := newNotification(a.Name(), text, category)
		if err != nil {
			return nil, err
		}
		if n != nil {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}
