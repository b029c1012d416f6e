package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/metrics"
)

type EventType string

const (
	EventMetadata EventType = "metadata"
	EventContent  EventType = "content"
	EventFinal    EventType = "final"
)

// Event is the wire unit of the streaming protocol: one JSON object per line
// on an append-only channel. Per answer: at most one metadata event (first),
// ordered content events whose concatenation is the full answer text, and
// exactly one final event (last).
type Event struct {
	Type           EventType              `json:"type"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	Sources        []manualModel.SourceRef `json:"sources,omitempty"`
	Content        string                 `json:"content,omitempty"`
	MessageID      string                 `json:"message_id,omitempty"`
	Actions        []manualModel.Action   `json:"actions,omitempty"`
	Confidence     *float64               `json:"confidence,omitempty"`
}

var ErrStreamClosed = errors.New("stream already finalized")

// Writer frames events as newline-delimited JSON and flushes each line so
// the client sees deltas as they arrive. Safe for a single producer; the
// mutex only guards against a late cancellation racing the final event.
type Writer struct {
	mu         sync.Mutex
	enc        *json.Encoder
	flusher    http.Flusher
	wroteFinal bool
}

func NewWriter(w io.Writer) *Writer {
	sw := &Writer{enc: json.NewEncoder(w)}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// Metadata announces the conversation and the resolved source list before the
// answer text exists, so a client can render citation affordances early.
func (w *Writer) Metadata(conversationID string, sources []manualModel.SourceRef) error {
	return w.write(Event{
		Type:           EventMetadata,
		ConversationID: conversationID,
		Sources:        sources,
	})
}

// Content emits one incremental answer delta.
func (w *Writer) Content(delta string) error {
	if delta == "" {
		return nil
	}
	return w.write(Event{Type: EventContent, Content: delta})
}

// Final closes the logical stream. After Final every further write fails
// with ErrStreamClosed; a stream that terminates without a final event is a
// failed stream from the consumer's point of view.
func (w *Writer) Final(messageID string, actions []manualModel.Action, confidence float64) error {
	w.mu.Lock()
	if w.wroteFinal {
		w.mu.Unlock()
		return ErrStreamClosed
	}
	w.wroteFinal = true
	w.mu.Unlock()

	return w.writeLocked(Event{
		Type:       EventFinal,
		MessageID:  messageID,
		Actions:    actions,
		Confidence: &confidence,
	})
}

func (w *Writer) write(ev Event) error {
	w.mu.Lock()
	closed := w.wroteFinal
	w.mu.Unlock()
	if closed {
		return ErrStreamClosed
	}
	return w.writeLocked(ev)
}

func (w *Writer) writeLocked(ev Event) error {
	if err := w.enc.Encode(ev); err != nil {
		return err
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	metrics.IncrementStreamEvents(string(ev.Type))
	return nil
}
