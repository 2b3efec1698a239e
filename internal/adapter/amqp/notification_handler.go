package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/app/notify"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// NotificationHandler decodes order events off the broker and hands
// them to the channel dispatcher. Handler errors stay here: dispatch
// is best-effort and nothing upstream waits on it.
type NotificationHandler struct {
	dispatcher *notify.Dispatcher
	logger     logger.Logger
}

func NewNotificationHandler(dispatcher *notify.Dispatcher, lgr logger.Logger) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher, logger: lgr}
}

func (h *NotificationHandler) HandleOrderEvent(ctx context.Context, body []byte) error {
	var event interfaces.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("event_parse_failed", "Failed to parse order event", "", nil, err)
		return err
	}

	h.logger.Debug("event_received", fmt.Sprintf("Received %s for order %s", event.Type, event.OrderNumber),
		event.EventID, map[string]interface{}{
			"order_number": event.OrderNumber,
			"new_status":   event.NewStatus,
		})

	outcomes := h.dispatcher.Dispatch(ctx, event)
	for _, outcome := range outcomes {
		h.logger.Info("dispatch_outcome", "Channel dispatch finished", event.EventID, map[string]interface{}{
			"channel":   outcome.Channel,
			"delivered": outcome.Delivered,
			"error":     outcome.Error,
		})
	}
	return nil
}
