package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
)

const DefaultTopic = "scheduling.appointments"

// MessageWriter é o subconjunto de *kafka.Writer usado aqui.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Payload publicado para consumidores (lembretes, analytics).
type Payload struct {
	EventID     string    `json:"event_id"`
	Action      string    `json:"action"`
	TherapistID string    `json:"therapist_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entity_id"`
	Metadata    any       `json:"metadata,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type KafkaSink struct {
	writer MessageWriter
	topic  string
}

func NewKafkaSink(w MessageWriter, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaSink{writer: w, topic: topic}
}

// NewKafkaWriter retorna nil quando não há brokers configurados.
func NewKafkaWriter(rawBrokers string) *kafka.Writer {
	brokers := SplitBrokers(rawBrokers)
	if len(brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func (s *KafkaSink) Write(ctx context.Context, ev audit.Event) error {
	msg, err := s.Message(ctx, ev)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, msg)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// Message monta a mensagem. Chave = terapeuta, preserva ordem por agenda.
func (s *KafkaSink) Message(ctx context.Context, ev audit.Event) (kafka.Message, error) {
	p := Payload{
		EventID:     uuid.NewString(),
		Action:      ev.Action,
		TherapistID: ev.TherapistID,
		ActorID:     ev.ActorID,
		Entity:      ev.Entity,
		EntityID:    ev.EntityID,
		Metadata:    ev.Metadata,
		OccurredAt:  ev.OccurredAt.UTC(),
	}

	body, err := json.Marshal(p)
	if err != nil {
		return kafka.Message{}, err
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(p.EventID)},
		{Key: "event_type", Value: []byte(ev.Action)},
	}
	carrier := headerCarrier{headers: &headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return kafka.Message{
		Topic:   s.topic,
		Key:     []byte(ev.TherapistID),
		Value:   body,
		Headers: headers,
		Time:    p.OccurredAt,
	}, nil
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c headerCarrier) Set(key, value string) {
	for i := range *c.headers {
		if (*c.headers)[i].Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var (
	_ propagation.TextMapCarrier = headerCarrier{}
	_ audit.Sink                 = (*KafkaSink)(nil)
)
