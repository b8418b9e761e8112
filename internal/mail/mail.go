// Package mail is the outbound transport boundary. The dispatcher hands a
// fully rendered message to a Transport and gets back a delivery receipt or
// an error; which provider actually carries the mail is a deployment choice.
package mail

import "context"

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Transport interface {
	// Send submits the message and returns the provider's message id.
	Send(ctx context.Context, msg Message) (string, error)
}
