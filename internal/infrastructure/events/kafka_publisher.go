// Package events publica notificaciones de dominio hacia el exterior.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

var (
	_ ports.LowStockPublisher = (*KafkaPublisher)(nil)
	_ ports.LowStockPublisher = NopPublisher{}
)

// EventTypeLowStock valor del header event_type.
const EventTypeLowStock = "inventory.stock.low"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos de stock bajo con kafka-go. La clave del mensaje es el id
// del producto, así los eventos de un mismo producto quedan ordenados en su partición.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	source  string
	timeout time.Duration
	log     *logger.Logger
}

const defaultPublishTimeout = 500 * time.Millisecond

// NewKafkaPublisher construye el publicador sobre un kafka.Writer. En modo Async el ajuste
// no espera al broker y los fallos de entrega se registran desde Completion.
func NewKafkaPublisher(cfg config.KafkaConfig, source string, log *logger.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.LowStockTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Async:        cfg.Async,
		WriteTimeout: cfg.PublishTimeout,
	}
	p := newKafkaPublisher(w, cfg.LowStockTopic, source, cfg.PublishTimeout, log)
	if cfg.Async {
		w.Completion = p.onCompletion
	}
	return p
}

func newKafkaPublisher(w messageWriter, topic, source string, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &KafkaPublisher{writer: w, topic: topic, source: source, timeout: timeout, log: log}
}

// onCompletion resultado de las entregas asíncronas.
func (p *KafkaPublisher) onCompletion(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.log.Error().Err(err).
			Str("topic", p.topic).
			Str("product_id", string(m.Key)).
			Msg("no se pudo entregar evento de stock bajo")
	}
}

// PublishLowStock envía el evento. Los fallos se registran y se devuelven; el llamador los ignora.
func (p *KafkaPublisher) PublishLowStock(ctx context.Context, event ports.LowStockEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal low stock event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeLowStock)},
			{Key: "source", Value: []byte(p.source)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error().Err(err).
			Str("topic", p.topic).
			Str("product_id", event.ProductID).
			Msg("no se pudo publicar evento de stock bajo")
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	p.log.Debug().
		Str("topic", p.topic).
		Str("product_id", event.ProductID).
		Int("deficit", event.Deficit).
		Msg("evento de stock bajo publicado")
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos (sin KAFKA_BROKERS).
type NopPublisher struct{}

// PublishLowStock no hace nada.
func (NopPublisher) PublishLowStock(context.Context, ports.LowStockEvent) error { return nil }
