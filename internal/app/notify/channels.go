package notify

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
)

// The channel implementations below hand the message to the respective
// gateway. The actual provider integrations are deployment concerns;
// here delivery is a structured log line the gateway agents tail.

type smsChannel struct {
	logger logger.Logger
}

func NewSMSChannel(lgr logger.Logger) Channel {
	return &smsChannel{logger: lgr}
}

func (c *smsChannel) Name() string { return "sms" }

func (c *smsChannel) Send(ctx context.Context, msg Message) error {
	if msg.Contact.Phone == "" {
		return fmt.Errorf("contact has no phone number")
	}
	c.logger.Info("sms_sent", msg.Text, msg.OrderNumber, map[string]interface{}{
		"to": msg.Contact.Phone,
	})
	return nil
}

type emailChannel struct {
	logger logger.Logger
}

func NewEmailChannel(lgr logger.Logger) Channel {
	return &emailChannel{logger: lgr}
}

func (c *emailChannel) Name() string { return "email" }

func (c *emailChannel) Send(ctx context.Context, msg Message) error {
	if msg.Contact.Email == "" {
		return fmt.Errorf("contact has no email address")
	}
	c.logger.Info("email_sent", msg.Text, msg.OrderNumber, map[string]interface{}{
		"to": msg.Contact.Email,
	})
	return nil
}

type pushChannel struct {
	logger logger.Logger
}

func NewPushChannel(lgr logger.Logger) Channel {
	return &pushChannel{logger: lgr}
}

func (c *pushChannel) Name() string { return "push" }

func (c *pushChannel) Send(ctx context.Context, msg Message) error {
	if msg.Contact.PushToken == "" {
		return fmt.Errorf("contact has no push token")
	}
	c.logger.Info("push_sent", msg.Text, msg.OrderNumber, map[string]interface{}{
		"token": msg.Contact.PushToken,
	})
	return nil
}

// ChannelsFor builds the enabled channel set from config names.
func ChannelsFor(names []string, lgr logger.Logger) []Channel {
	var channels []Channel
	for _, name := range names {
		switch name {
		case "sms":
			channels = append(channels, NewSMSChannel(lgr))
		case "email":
			channels = append(channels, NewEmailChannel(lgr))
		case "push":
			channels = append(channels, NewPushChannel(lgr))
		}
	}
	return channels
}
