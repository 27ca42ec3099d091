package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/menofiaacademy/academy-site/internal/registration"
)

// DryRunNotifier prints what would be e-mailed without actually sending
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to stdout
func NewDryRunNotifier() *DryRunNotifier {
	return NewDryRunNotifierTo(os.Stdout)
}

// NewDryRunNotifierTo creates a dry-run notifier writing to out
func NewDryRunNotifierTo(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(_ context.Context, data registration.Data) error {
	msg := formatMessage(data)
	fmt.Fprintln(n.out, "--- Registration notification ---")
	fmt.Fprintf(n.out, "Subject: %s\n", msg.Subject)
	if msg.ReplyTo != "" {
		fmt.Fprintf(n.out, "Reply-To: %s\n", msg.ReplyTo)
	}
	fmt.Fprintln(n.out, msg.HTML)
	fmt.Fprintln(n.out)
	return nil
}
