// Package notifier delivers resolved download links to recipients over an
// external channel. Delivery is an optional path: resolve correctness never
// depends on it.
package notifier

import "context"

// Notifier sends a resolved download link to a recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, link string) error
}
