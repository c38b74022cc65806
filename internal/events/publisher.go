// Package events provides the NATS JetStream change feed for the product
// collection: a publisher invoked after every successful write and a
// subscriber that surfaces change notifications to live catalog subscriptions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
)

// Stream configuration for catalog change events.
const (
	StreamName    = "CATALOG_EVENTS"
	SubjectPrefix = "product."
)

// Event types carried on the change feed.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ChangeEvent represents one change to the product collection.
type ChangeEvent struct {
	EventType string    `json:"eventType"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits catalog change events to NATS JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the catalog stream exists.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := connect(natsURL, "storefront-service-publisher", logger)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to ensure catalog stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.publish(ctx, p.buildEvent(ProductCreated, product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product) {
	p.publish(ctx, p.buildEvent(ProductUpdated, product))
}

// PublishProductDeleted publishes a product.deleted event for an id. The full
// record may already be gone, so only the id travels with the event.
func (p *Publisher) PublishProductDeleted(ctx context.Context, productID string) {
	p.publish(ctx, ChangeEvent{
		EventType: ProductDeleted,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) buildEvent(eventType string, product *models.Product) ChangeEvent {
	return ChangeEvent{
		EventType: eventType,
		ProductID: product.ID.String(),
		Name:      product.Name,
		Category:  product.Category,
		Timestamp: time.Now().UTC(),
	}
}

// publish sends the event asynchronously so writes never block on the feed.
func (p *Publisher) publish(_ context.Context, event ChangeEvent) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal change event")
			return
		}

		if _, err := p.js.Publish(pubCtx, event.EventType, data); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
			}).WithError(err).Error("Failed to publish change event")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"eventType": event.EventType,
			"productID": event.ProductID,
		}).Debug("Change event published")
	}()
}

// connect dials NATS with production-resilient reconnect settings.
func connect(natsURL, name string, logger *logrus.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warnf("[NATS] Disconnected: %v", err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("[NATS] Connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
