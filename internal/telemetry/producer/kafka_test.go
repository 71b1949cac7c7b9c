package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewKafkaProducer_DisabledWithoutBrokers(t *testing.T) {
	if NewKafkaProducer(nil, "topic", zap.NewNop()) != nil {
		t.Error("producer without brokers should be nil")
	}
	if NewKafkaProducer([]string{"localhost:9092"}, "", zap.NewNop()) != nil {
		t.Error("producer without topic should be nil")
	}

	var p *KafkaProducer
	if err := p.Emit(context.Background(), &domain.Event{Type: "x"}); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
}

func TestKafkaProducer_EmitWritesJSONKeyedByType(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaProducer(w, "research-telemetry", zap.NewNop())
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	if err := p.Emit(context.Background(), &domain.Event{Type: "auth.logout", Source: "auth", CreatedAt: created}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "auth.logout" {
		t.Errorf("key = %q, want auth.logout", w.msgs[0].Key)
	}

	var got domain.Event
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "auth" || !got.CreatedAt.Equal(created) {
		t.Errorf("event = %+v", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close: err = %v, closed = %v", err, w.closed)
	}
}

func TestKafkaProducer_EmitReturnsWriteError(t *testing.T) {
	p := newKafkaProducer(&fakeWriter{err: errors.New("no leader")}, "t", nil)
	if err := p.Emit(context.Background(), &domain.Event{Type: "x"}); err == nil {
		t.Error("Emit should return the write error")
	}
}
