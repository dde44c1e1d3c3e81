package messaging

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Listen subscribes to topic and feeds every payload to handler until ctx is
// done. Handler errors are logged and the loop keeps going.
func Listen(ctx context.Context, broker Broker, topic string, handler func([]byte) error) error {
	msgChan, err := broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("message handler failed")
			}
		}
	}()

	return nil
}
