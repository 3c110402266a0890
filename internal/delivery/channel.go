// Package delivery sends rendered alert emails through a configurable provider.
package delivery

import "context"

//go:generate mockgen -source=channel.go -destination=channel_mock.go -package=delivery

type Channel interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
	Name() string
}

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Receipt struct {
	MessageID string
	Provider  string
}
