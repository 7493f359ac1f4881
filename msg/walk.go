package msg

import "errors"

// SkipChildren can be returned by a WalkFunc visiting a message to skip
// its recipients, attachments and embedded messages. Returned for a
// recipient or attachment it has no children to skip and the walk goes on.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each node of a message tree. node is a *Message,
// *Recipient or *Attachment and path is its storage path. Return nil to
// continue walking, or an error to stop.
type WalkFunc func(path string, node interface{}) error

// Walk visits m and its descendants depth first: the message, its
// recipients, its attachments, then each embedded message in turn.
//
// Example:
//
//	msg.Walk(m, func(path string, node interface{}) error {
//	    switch n := node.(type) {
//	    case *msg.Message:
//	        fmt.Println("message:", path, n.Subject)
//	    case *msg.Attachment:
//	        fmt.Println("attachment:", path, n.Filename)
//	    }
//	    return nil
//	})
func Walk(m *Message, fn WalkFunc) error {
	err := walkMessage(m, fn)
	if err == SkipChildren {
		return nil
	}
	return err
}

func walkMessage(m *Message, fn WalkFunc) error {
	if err := fn(m.path, m); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for _, r := range m.Recipients {
		if err := fn(r.path, r); err != nil && err != SkipChildren {
			return err
		}
	}
	for _, a := range m.Attachments {
		if err := fn(a.path, a); err != nil && err != SkipChildren {
			return err
		}
	}
	for _, sub := range m.Messages {
		if err := walkMessage(sub, fn); err != nil {
			return err
		}
	}
	return nil
}
