package services

import (
	"fmt"

	pubnub "github.com/pubnub/go"
)

// Publisher pushes small JSON messages to browser clients.
type Publisher interface {
	Publish(channel string, message map[string]any) error
}

type PubNubPublisher struct {
	pn *pubnub.PubNub
}

// NewPubNubPublisher returns nil when no publish key is configured.
func NewPubNubPublisher(publishKey, subscribeKey, secretKey string) *PubNubPublisher {
	if publishKey == "" || subscribeKey == "" {
		return nil
	}

	cfg := pubnub.NewConfig()
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	cfg.SecretKey = secretKey
	cfg.UUID = "easel-ticket-server"

	return &PubNubPublisher{pn: pubnub.NewPubNub(cfg)}
}

func (p *PubNubPublisher) Publish(channel string, message map[string]any) error {
	_, st, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	if st.StatusCode >= 400 {
		return fmt.Errorf("publish to %s: status %d", channel, st.StatusCode)
	}
	return nil
}

// OrderChannel is the channel the success page listens on for its session.
func OrderChannel(sessionID string) string {
	return "order-" + sessionID
}
