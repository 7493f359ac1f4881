package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-msg/msg"
)

func runDump(_ context.Context, e *env, fs *pflag.FlagSet) error {
	path, err := single(fs)
	if err != nil {
		return err
	}
	f, err := msg.Open(path, e.opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	return msg.Walk(f.Message(), func(p string, node interface{}) error {
		indent := strings.Repeat("  ", depth(p))
		switch n := node.(type) {
		case *msg.Message:
			fmt.Fprintf(e.stdout, "%smessage %s class=%s subject=%q\n", indent, p, n.Type, n.Subject)
			if n.SenderEmail != "" || n.SenderName != "" {
				fmt.Fprintf(e.stdout, "%s  from: %s <%s>\n", indent, n.SenderName, n.SenderEmail)
			}
			if !n.SentTime.IsZero() {
				fmt.Fprintf(e.stdout, "%s  sent: %s\n", indent, n.SentTime.UTC().Format("2006-01-02 15:04:05Z"))
			}
			if a := n.Appointment; a != nil {
				fmt.Fprintf(e.stdout, "%s  appointment: %s - %s at %q\n", indent,
					a.Start.UTC().Format("2006-01-02 15:04"), a.End.UTC().Format("2006-01-02 15:04"), a.Location)
			}
		case *msg.Recipient:
			fmt.Fprintf(e.stdout, "%srecipient %s %q <%s>\n", indent, n.Type, n.DisplayName, n.Email)
		case *msg.Attachment:
			fmt.Fprintf(e.stdout, "%sattachment %q method=%s size=%d", indent, n.Filename, n.Method, len(n.Data))
			if n.MIMETag != "" {
				fmt.Fprintf(e.stdout, " type=%s", n.MIMETag)
			}
			if n.ContentID != "" {
				fmt.Fprintf(e.stdout, " cid=%s", n.ContentID)
			}
			fmt.Fprintln(e.stdout)
		}
		return nil
	})
}

// depth is the number of storage levels below the root in p.
func depth(p string) int {
	p = strings.Trim(p, "/")
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}
