package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// Subscriber opens change-feed subscriptions against the catalog stream. Each
// Subscribe call gets its own ephemeral JetStream consumer so independent
// catalog views (storefront listing, admin listing) never share delivery
// order.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewSubscriber connects to NATS for change-feed consumption.
func NewSubscriber(natsURL string, logger *logrus.Logger) (*Subscriber, error) {
	nc, err := connect(natsURL, "storefront-service-subscriber", logger)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Subscriber{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-feed"),
	}, nil
}

// Close closes the NATS connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}

// Subscribe starts delivering change events until ctx is cancelled. Events
// arrive in the order the stream produced them. Transport faults are reported
// on the error channel; the event channel stays open until cancellation.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan ChangeEvent, <-chan error, error) {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: SubjectPrefix + ">",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create change feed consumer: %w", err)
	}

	msgs, err := consumer.Messages()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open change feed iterator: %w", err)
	}

	eventsCh := make(chan ChangeEvent)
	errsCh := make(chan error, 1)

	go func() {
		defer close(eventsCh)
		go func() {
			<-ctx.Done()
			msgs.Stop()
		}()

		for {
			msg, err := msgs.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					return
				}
				select {
				case errsCh <- err:
				default:
				}
				time.Sleep(time.Second)
				continue
			}

			var event ChangeEvent
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				s.logger.WithError(err).Error("Failed to unmarshal change event")
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()

			select {
			case eventsCh <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return eventsCh, errsCh, nil
}
