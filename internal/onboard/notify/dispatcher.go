// Package notify delivers onboarding messages. The dispatcher is an
// external collaborator from the service's point of view: the invite
// flow only cares that a message was accepted for delivery.
package notify

import "context"

// Template names a message template known to the dispatcher.
type Template string

// TemplateInvitation carries the redemption link to a freshly invited
// user. Required variables: "first_name", "link".
const TemplateInvitation Template = "invitation"

// Message is a single notification to deliver.
type Message struct {
	Template  Template
	Recipient string
	Variables map[string]string
}

// Dispatcher delivers messages and returns a provider message id.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
