package stream

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mindguard/backend/internal/analysis/reply"
	"github.com/mindguard/backend/internal/model/chat"
	"github.com/mindguard/backend/internal/service/classifier"
	"github.com/mindguard/backend/internal/service/conversation"
)

// Handler serves the live transcript feed. Each websocket connection owns a
// fresh conversation, matching one browser page load.
type Handler struct {
	classifier classifier.Client
	upgrader   websocket.Upgrader
}

// New creates the stream handler.
func New(client classifier.Client) *Handler {
	return &Handler{
		classifier: client,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// StreamResponse is the outbound event envelope.
type StreamResponse struct {
	Event    string         `json:"event"`
	Message  *chat.Message  `json:"message,omitempty"`
	Snapshot *chat.Snapshot `json:"snapshot,omitempty"`
	Typing   bool           `json:"typing,omitempty"`
	Text     string         `json:"text,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	store := conversation.NewStore(h.classifier)
	events, cancel := store.Subscribe()
	defer cancel()

	// All frames go through out so only one goroutine writes to the socket.
	out := make(chan StreamResponse, 64)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case resp := <-out:
				if err := conn.WriteJSON(resp); err != nil {
					log.Printf("[ws] write failed: %v", err)
					stop()
					return
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				h.enqueue(ctx, out, toStreamResponse(event))
			}
		}
	}()

	snapshot := store.Snapshot()
	h.enqueue(ctx, out, StreamResponse{Event: "snapshot", Snapshot: &snapshot})

	h.readLoop(ctx, conn, store, out)
}

// readLoop consumes inbound frames until the client disconnects. Submissions
// run on their own goroutine so a pending reply never blocks reads; the
// store itself rejects overlapping submissions.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, store *conversation.Store, out chan StreamResponse) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		switch inbound.Type {
		case "message":
			go func(text string) {
				if _, err := store.Submit(ctx, text); err != nil {
					h.enqueue(ctx, out, StreamResponse{Event: "error", Error: err.Error()})
				}
			}(inbound.Text)
		default:
			log.Printf("[ws] ignoring unknown message type %q", inbound.Type)
		}
	}
}

func (h *Handler) enqueue(ctx context.Context, out chan StreamResponse, resp StreamResponse) {
	select {
	case <-ctx.Done():
	case out <- resp:
	}
}

func toStreamResponse(event conversation.Event) StreamResponse {
	switch event.Type {
	case conversation.EventMessage:
		msg := event.Message
		return StreamResponse{Event: "message", Message: &msg}
	case conversation.EventTyping:
		resp := StreamResponse{Event: "typing", Typing: event.Typing}
		if event.Typing {
			resp.Text = reply.Typing
		}
		return resp
	default:
		return StreamResponse{Event: string(event.Type)}
	}
}
