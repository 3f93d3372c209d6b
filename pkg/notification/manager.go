package notification

import (
	"context"
	"log"

	"github.com/nikoksr/notify"

	"simrelative/pkg/model"
	"simrelative/pkg/pubsub"
)

const subject = "New session started:"

type Manager struct {
	ctx     context.Context
	events  *pubsub.PubSub[model.SessionStarted]
	started <-chan model.SessionStarted
	n       *notify.Notify
}

// NewManager subscribes to session starts right away so no event published
// before Start is lost.
func NewManager(ctx context.Context, events *pubsub.PubSub[model.SessionStarted], services ...notify.Notifier) *Manager {
	return &Manager{
		ctx:     ctx,
		events:  events,
		started: events.Subscribe(pubsub.TopicSessionStarted),
		n:       notify.NewWithServices(services...),
	}
}

// Start forwards session starts to every service until the context ends.
func (m *Manager) Start() {
	defer m.events.Unsubscribe(pubsub.TopicSessionStarted, m.started)
	for {
		select {
		case <-m.ctx.Done():
			return
		case newSession, ok := <-m.started:
			if !ok {
				return
			}
			log.Printf("Session started: %s at %s (%s)\n", newSession.SeriesName, newSession.TrackName, newSession.SessionType)
			if err := m.n.Send(m.ctx, subject, newSession.String()); err != nil {
				log.Printf("Error notifying session start: %s", err.Error())
			}
		}
	}
}
