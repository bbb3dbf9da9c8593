package handlers

import (
	"bufio"
	"time"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/events"
	"github.com/biosecret/tasktracker/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Subscriber là phần của events.Broker mà stream SSE cần
type Subscriber interface {
	Subscribe(userID int64) *events.Subscription
	Unsubscribe(s *events.Subscription)
}

type EventsHandler struct {
	broker    Subscriber
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewEventsHandler(broker Subscriber, keepAlive time.Duration, log zerolog.Logger) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &EventsHandler{broker: broker, keepAlive: keepAlive, log: log}
}

// Stream gửi các thay đổi task của người dùng hiện tại dưới dạng server-sent events
//
//	@Summary	Stream own task events
//	@Tags		tasks
//	@Produce	text/event-stream
//	@Security	BearerAuth
//	@Success	200
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Router		/api/tasks/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.log, common.ErrUnauthorized)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	sub := h.broker.Subscribe(userID)
	log := h.log.With().Str("subscription", sub.ID).Int64("user_id", userID).Logger()
	log.Debug().Msg("Event stream opened")

	// đóng khi server shutdown
	notify := c.Context().Done()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		keepAliveTicker := time.NewTicker(h.keepAlive)
		defer func() {
			keepAliveTicker.Stop()
			h.broker.Unsubscribe(sub)
			log.Debug().Msg("Event stream closed")
		}()

		// gửi header và một keep-alive ngay để client thấy stream đã mở
		if _, err := w.WriteString(events.KeepAliveMessage); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				msg, err := events.FormatSSE(string(ev.Type), ev)
				if err != nil {
					log.Error().Err(err).Msg("Error formatting sse message")
					continue
				}
				if _, err := w.WriteString(msg); err != nil {
					return
				}
			case <-keepAliveTicker.C:
				if _, err := w.WriteString(events.KeepAliveMessage); err != nil {
					return
				}
			case <-notify:
				return
			}

			// client ngắt kết nối thì Flush trả lỗi
			if err := w.Flush(); err != nil {
				log.Debug().Err(err).Msg("Error while flushing")
				return
			}
		}
	}))

	return nil
}
