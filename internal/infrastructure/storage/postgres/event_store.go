package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/timeline"
)

const timelineTable = "sys_purchase_events"

// CompressionAlgo specifies the payload compression algorithm.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// payloadCompressThreshold: payloads above this are stored zstd-compressed.
const payloadCompressThreshold = 10 * 1024

// EventStore implements timeline.Repository. Events are append-only; large
// payloads are compressed with zstd.
type EventStore struct {
	txm     *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewEventStore creates a new timeline event store.
func NewEventStore(txm *TxManager) (*EventStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &EventStore{
		txm:     txm,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Append stores a new event.
func (s *EventStore) Append(ctx context.Context, event *timeline.PurchaseEvent) error {
	if id.IsNil(event.ID) {
		event.ID = id.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	payload := event.Payload
	var compressed []byte
	algo := CompressionNone
	if len(payload) > payloadCompressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_purchase_events (
			id, order_id, event_type, payment_id, return_id,
			payload, payload_compressed, compression_algo,
			created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.txm.GetQuerier(ctx).Exec(ctx, sql,
		event.ID, event.OrderID, event.Type, event.PaymentID, event.ReturnID,
		payload, compressed, algo,
		event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// ListByOrder returns all events for an order in chronological order.
func (s *EventStore) ListByOrder(ctx context.Context, orderID id.ID) ([]timeline.PurchaseEvent, error) {
	sql := `
		SELECT id, order_id, event_type, payment_id, return_id,
			   payload, payload_compressed, compression_algo,
			   created_by, created_at
		FROM sys_purchase_events
		WHERE order_id = $1
		ORDER BY created_at, id
	`
	return s.queryEvents(ctx, sql, orderID)
}

// ListByOrderAndType returns matching events in chronological order.
func (s *EventStore) ListByOrderAndType(ctx context.Context, orderID id.ID, eventType reconcile.EventType) ([]timeline.PurchaseEvent, error) {
	sql := `
		SELECT id, order_id, event_type, payment_id, return_id,
			   payload, payload_compressed, compression_algo,
			   created_by, created_at
		FROM sys_purchase_events
		WHERE order_id = $1 AND event_type = $2
		ORDER BY created_at, id
	`
	return s.queryEvents(ctx, sql, orderID, eventType)
}

func (s *EventStore) queryEvents(ctx context.Context, sql string, args ...any) ([]timeline.PurchaseEvent, error) {
	rows, err := s.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []timeline.PurchaseEvent
	for rows.Next() {
		var (
			e          timeline.PurchaseEvent
			compressed []byte
			algo       CompressionAlgo
		)
		err := rows.Scan(
			&e.ID, &e.OrderID, &e.Type, &e.PaymentID, &e.ReturnID,
			&e.Payload, &compressed, &algo,
			&e.CreatedBy, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			e.Payload = decompressed
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// Ensure interface compliance.
var _ timeline.Repository = (*EventStore)(nil)
