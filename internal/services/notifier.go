package services

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go/v7"
)

// PubNubNotifier publishes operator notices on a PubNub channel.
type PubNubNotifier struct {
	pn *pubnub.PubNub
}

// NewPubNubNotifier returns nil when no publish key is configured, which
// disables notifications.
func NewPubNubNotifier(publishKey, subscribeKey, secretKey, userID string) *PubNubNotifier {
	if publishKey == "" {
		return nil
	}

	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	cfg.SecretKey = secretKey

	return &PubNubNotifier{pn: pubnub.NewPubNub(cfg)}
}

func (n *PubNubNotifier) Publish(ctx context.Context, channel string, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, st, err := n.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish: status %d: %w", st.StatusCode, err)
	}
	return nil
}
