package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/adapter/metrics"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// channelTimeout bounds a single delivery attempt so one slow channel
// cannot hold the others' outcomes hostage.
const channelTimeout = 5 * time.Second

// Message is what a channel delivers. Template rendering lives with
// the channel providers; we hand over one plain line of text.
type Message struct {
	OrderNumber string
	Event       string
	NewStatus   domain.Status
	Text        string
	Contact     domain.CustomerContact
}

type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type Dispatcher struct {
	channels []Channel
	logger   logger.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(channels []Channel, lgr logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{channels: channels, logger: lgr, metrics: m}
}

// Dispatch attempts delivery over every eligible channel exactly once.
// Channels run independently: a failure is logged and recorded in the
// outcome, and never blocks or fails the others.
func (d *Dispatcher) Dispatch(ctx context.Context, event interfaces.OrderEvent) []interfaces.ChannelOutcome {
	if event.Customer == nil {
		d.logger.Debug("dispatch_skipped", "Order has no customer contact", event.OrderNumber, nil)
		return nil
	}

	msg := Message{
		OrderNumber: event.OrderNumber,
		Event:       event.Type,
		NewStatus:   event.NewStatus,
		Text:        renderText(event),
		Contact:     *event.Customer,
	}

	var eligible []Channel
	for _, ch := range d.channels {
		if channelEligible(ch.Name(), event.Customer) {
			eligible = append(eligible, ch)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	outcomes := make([]interfaces.ChannelOutcome, len(eligible))
	var wg sync.WaitGroup
	for i, ch := range eligible {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, channelTimeout)
			defer cancel()

			outcome := interfaces.ChannelOutcome{Channel: ch.Name(), Delivered: true}
			if err := ch.Send(sendCtx, msg); err != nil {
				outcome.Delivered = false
				outcome.Error = err.Error()
				d.metrics.NotificationAttempts.WithLabelValues(ch.Name(), "failed").Inc()
				d.logger.Error("notification_failed", "Channel delivery failed", event.OrderNumber, map[string]interface{}{
					"channel": ch.Name(),
				}, err)
			} else {
				d.metrics.NotificationAttempts.WithLabelValues(ch.Name(), "delivered").Inc()
			}
			outcomes[i] = outcome
		}(i, ch)
	}
	wg.Wait()

	return outcomes
}

// channelEligible checks that the contact has an address for the
// channel and that its preferences, when present, include it.
func channelEligible(name string, contact *domain.CustomerContact) bool {
	hasAddress := false
	switch name {
	case "sms":
		hasAddress = contact.Phone != ""
	case "email":
		hasAddress = contact.Email != ""
	case "push":
		hasAddress = contact.PushToken != ""
	}
	if !hasAddress {
		return false
	}
	if len(contact.Channels) == 0 {
		return true
	}
	for _, preferred := range contact.Channels {
		if preferred == name {
			return true
		}
	}
	return false
}

func renderText(event interfaces.OrderEvent) string {
	switch {
	case event.Type == interfaces.EventOrderCreated:
		return fmt.Sprintf("Order %s received. Total: %d.", event.OrderNumber, event.TotalAmount)
	case event.NewStatus == domain.StatusCancelled && event.CancellationReason != nil:
		return fmt.Sprintf("Order %s was cancelled: %s", event.OrderNumber, *event.CancellationReason)
	default:
		return fmt.Sprintf("Order %s is now %s.", event.OrderNumber, event.NewStatus)
	}
}
