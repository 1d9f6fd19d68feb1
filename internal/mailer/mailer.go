// Package mailer delivers invoice emails. Delivery may be synchronous or
// queued by the provider; a nil error from Send means dispatch was accepted,
// not that the message reached the recipient.
package mailer

import "context"

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is an outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer hands messages to the mail subsystem.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
