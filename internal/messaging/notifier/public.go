package notifier

import "context"

type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// Notifier announces resource changes to interested consumers. Failures are
// the caller's to log; a lost notification never fails the request.
type Notifier interface {
	ResourceUpdate(ctx context.Context, resource string, id string, change ChangeType) error
}
