package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// ActivityChannelPrefix is followed by the user id.
const ActivityChannelPrefix = "journal:user:"

// ActivityConn is the minimal interface our WebSocket implementation must satisfy.
type ActivityConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// ActivityHub fans activity events out to each user's open connections. With
// Redis, events travel through pub/sub so every instance sees them.
type ActivityHub struct {
	mu          sync.RWMutex
	connections map[string]map[ActivityConn]struct{}
	redis       *redis.Client
	log         logger.Logger
	started     sync.Once
}

func NewActivityHub(client *redis.Client, log logger.Logger) *ActivityHub {
	return &ActivityHub{
		connections: make(map[string]map[ActivityConn]struct{}),
		redis:       client,
		log:         log,
	}
}

func ActivityChannel(userID string) string {
	return ActivityChannelPrefix + userID
}

// Register adds conn to the user's set. A user may have several tabs open.
func (h *ActivityHub) Register(userID string, conn ActivityConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[userID]
	if !ok {
		set = make(map[ActivityConn]struct{})
		h.connections[userID] = set
	}
	set[conn] = struct{}{}
}

func (h *ActivityHub) Unregister(userID string, conn ActivityConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.connections[userID]
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, userID)
	}
}

// ConnectionCount reports how many connections userID has open on this instance.
func (h *ActivityHub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// FanOut sends the event to this instance's connections for event.UserID.
func (h *ActivityHub) FanOut(event models.ActivityEvent) {
	if event.UserID == "" {
		return
	}

	h.mu.RLock()
	conns := make([]ActivityConn, 0, len(h.connections[event.UserID]))
	for c := range h.connections[event.UserID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		// Non-blocking best-effort send.
		go func(c ActivityConn) {
			if err := c.WriteJSON(event); err != nil {
				h.log.Debugf("error writing activity event to websocket: %v", err)
			}
		}(c)
	}
}

// Publish announces a write. Without Redis the event only reaches this instance.
func (h *ActivityHub) Publish(ctx context.Context, event models.ActivityEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if h.redis == nil {
		h.FanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, ActivityChannel(event.UserID), data).Err()
}

// Start runs the shared Redis listener once per instance. It is a no-op
// without Redis.
func (h *ActivityHub) Start(ctx context.Context) {
	if h.redis == nil {
		return
	}
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *ActivityHub) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.PSubscribe(ctx, ActivityChannelPrefix+"*")
			defer pubsub.Close()

			h.log.Infof("✅ Activity Redis subscriber started (pattern: %s*)", ActivityChannelPrefix)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					h.log.Warnf("Redis subscriber error: %v", err)
					if !sleepCtx(ctx, backoff) {
						return
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				event, ok := decodeActivity(msg.Channel, msg.Payload)
				if !ok {
					h.log.Warnf("dropping malformed activity event on %s", msg.Channel)
					continue
				}
				h.FanOut(event)
			}
		}()
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// decodeActivity rebuilds an event from a pub/sub message. The user id is not
// part of the payload; it comes from the channel name.
func decodeActivity(channel, payload string) (models.ActivityEvent, bool) {
	userID := strings.TrimPrefix(channel, ActivityChannelPrefix)
	if userID == "" || userID == channel {
		return models.ActivityEvent{}, false
	}
	var event models.ActivityEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return models.ActivityEvent{}, false
	}
	event.UserID = userID
	return event, true
}
