package usecase

import (
	"context"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewOutboxEvent кодирует fields в google.protobuf.Struct.
// Значения должны быть совместимы со structpb.NewValue.
func NewOutboxEvent(eventType OutboxEventType, aggregateID string, fields map[string]any) (*OutboxEvent, error) {
	now := time.Now().UTC()

	body := map[string]any{
		"event_type":   string(eventType),
		"aggregate_id": aggregateID,
		"occurred_at":  now.Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}

	st, err := structpb.NewStruct(body)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	payload, err := proto.Marshal(st)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &OutboxEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}

// DecodeOutboxPayload — обратное преобразование для потребителей и тестов.
func DecodeOutboxPayload(payload []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(payload, &st); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return st.AsMap(), nil
}

func productFields(p *domain.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"category":    string(p.Category),
		"subcategory": p.Subcategory,
		"description": p.Description,
	}
}

func cartFields(items []domain.CartItem) map[string]any {
	lines := make([]any, 0, len(items))
	total := 0
	for _, item := range items {
		lines = append(lines, map[string]any{
			"id":       item.ID,
			"name":     item.Name,
			"quantity": item.Quantity,
		})
		total += item.Quantity
	}

	return map[string]any{
		"items":       lines,
		"total_count": total,
	}
}

// recordEvent создаёт событие и сохраняет его в outbox текущей транзакции.
func recordEvent(ctx context.Context, repo OutboxRepository, eventType OutboxEventType, aggregateID string, fields map[string]any) error {
	event, err := NewOutboxEvent(eventType, aggregateID, fields)
	if err != nil {
		return err
	}

	if _, err := repo.Create(ctx, event); err != nil {
		return err
	}

	return nil
}
