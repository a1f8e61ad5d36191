package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "submitly.submissions"}

	event := map[string]string{"type": "submission.status_changed", "status": "processing"}
	require.NoError(t, p.Publish(context.Background(), "SUB-123456-7", event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "submitly.submissions", msg.Topic)
	assert.Equal(t, []byte("SUB-123456-7"), msg.Key)
	var got map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)

	w.err = errors.New("broker unavailable")
	assert.Error(t, p.Publish(context.Background(), "SUB-123456-7", event))
	assert.Error(t, p.Publish(context.Background(), "k", make(chan int)))
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	_ = p.Publish(context.Background(), "a", 1)
	_ = p.Publish(context.Background(), "b", 2)
	assert.Equal(t, []Event{{"a", 1}, {"b", 2}}, p.Events())
}
