package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/moodfit/pkg/util"
)

// Event types pushed to subscribers.
const (
	EventState     = "state"
	EventCountdown = "countdown"
	EventWeather   = "weather"
)

// Notification is one server-sent event.
type Notification struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// Countdown is the payload of a countdown notification.
type Countdown struct {
	Remaining int `json:"remaining"`
}

// Broadcaster fans notifications out to subscribers. Slow subscribers miss events
// rather than block the wizard.
type Broadcaster struct {
	buffer int

	mu   sync.Mutex
	next int
	subs map[int]chan Notification
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{buffer: buffer, subs: make(map[int]chan Notification)}
}

// Subscribe registers a listener. The returned func unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, b.buffer)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers a notification to every subscriber with room in its buffer.
func (b *Broadcaster) Publish(kind string, data any) Notification {
	n := Notification{ID: uuid.NewString(), Type: kind, At: util.NowUTC(), Data: data}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return n
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
