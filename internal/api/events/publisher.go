// Package events pushes playback notifications to browsers over Server-Sent Events.
package events

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/r3labs/sse/v2"

	"github.com/osa030/slidebox/internal/api/message"
	"github.com/osa030/slidebox/internal/app/notification"
)

// StreamID is the SSE stream carrying slideshow events.
const StreamID = "slideshow"

// Publisher is a notification stream backed by an SSE server.
type Publisher struct {
	server *sse.Server
}

// NewPublisher creates a publisher with its stream ready.
func NewPublisher() *Publisher {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(StreamID)
	return &Publisher{server: server}
}

// Send publishes a notification as a JSON event.
func (p *Publisher) Send(n *notification.Notification) error {
	data, err := json.Marshal(message.FromNotification(n))
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	p.server.Publish(StreamID, &sse.Event{
		ID:   []byte(strconv.FormatUint(n.SequenceNo, 10)),
		Data: data,
	})
	return nil
}

// ServeHTTP subscribes the caller. The stream query parameter defaults to the slideshow stream.
func (p *Publisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") == "" {
		q := r.URL.Query()
		q.Set("stream", StreamID)
		r = r.Clone(r.Context())
		r.URL.RawQuery = q.Encode()
	}
	p.server.ServeHTTP(w, r)
}

// Close disconnects every subscriber.
func (p *Publisher) Close() {
	p.server.Close()
}
