package realtime

import (
	"context"

	"github.com/ricabook/lovestayteste/models"
)

// Feed carries message-insert events. Subscriptions are scoped to a single
// conversation and deliver only rows inserted after the subscription opened;
// the cancel func releases the subscription's resources.
type Feed interface {
	Publish(ctx context.Context, msg models.Message) error
	Subscribe(ctx context.Context, conversationID uint) (<-chan models.Message, func())
}
