package events

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const subscriptionBuffer = 16

// Subscription nhận event của một user cho tới khi bị hủy hoặc broker đóng; khi đó C bị đóng
type Subscription struct {
	ID     string
	UserID int64
	C      <-chan TaskEvent

	ch   chan TaskEvent
	once sync.Once
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Broker giữ các subscription đang mở và gửi event tới đúng user
type Broker struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
	log    zerolog.Logger
}

func NewBroker(log zerolog.Logger) *Broker {
	return &Broker{log: log}
}

func Filter[T any](filter func(n T) bool) func(list []T) []T {
	return func(list []T) []T {
		r := make([]T, 0, len(list))
		for _, n := range list {
			if filter(n) {
				r = append(r, n)
			}
		}
		return r
	}
}

// Subscribe đăng ký subscription mới cho userID.
// Nếu broker đã đóng, subscription trả về cũng đã đóng.
func (b *Broker) Subscribe(userID int64) *Subscription {
	ch := make(chan TaskEvent, subscriptionBuffer)
	s := &Subscription{ID: uuid.NewString(), UserID: userID, C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.close()
		return s
	}
	b.subs = append(b.subs, s)
	return s
}

// Unsubscribe gỡ s và đóng channel; gọi nhiều lần vẫn an toàn
func (b *Broker) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	idx := slices.Index(b.subs, s)
	if idx != -1 {
		b.subs[idx] = nil
		b.subs = slices.Delete(b.subs, idx, idx+1)
	}
	b.mu.Unlock()
	s.close()
}

// Publish gửi ev tới subscription của user mà không block.
// Subscriber đầy buffer sẽ bị bỏ qua event.
func (b *Broker) Publish(ev TaskEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owned := Filter(func(s *Subscription) bool { return s.UserID == ev.UserID })(b.subs)
	for _, s := range owned {
		select {
		case s.ch <- ev:
		default:
			b.log.Warn().Str("subscription", s.ID).Int64("user_id", s.UserID).Str("event", string(ev.Type)).Msg("Dropping task event for slow subscriber")
		}
	}
}

func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close đóng tất cả subscription
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, s := range b.subs {
		s.close()
	}
	b.subs = nil
}
