package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/handlers/dto"
)

const (
	clientBuffer = 16
	writeTimeout = 10 * time.Second
)

// EventHub distribui os eventos de conta para os administradores conectados
type EventHub struct {
	mu       sync.Mutex
	clients  map[*eventClient]struct{}
	upgrader websocket.Upgrader
	logger   ports.Logger
}

type eventClient struct {
	send chan []byte
}

// NewEventHub cria um novo EventHub
func NewEventHub(logger ports.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*eventClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Observe é registrado no Dispatcher; clientes lentos são desconectados
func (h *EventHub) Observe(event *events.StorageEvent) {
	payload, err := json.Marshal(dto.ToEventMessage(event))
	if err != nil {
		h.logger.Error("failed to encode account event", "event", event.Name, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dropping slow event client")
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ClientCount retorna quantos clientes estão conectados
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stream godoc
// @Summary      Stream de eventos de conta
// @Description  WebSocket que envia cada evento de conta (criação, alteração, remoção) como JSON
// @Tags         admin
// @Produce      json
// @Success      101  {object}  dto.EventMessage
// @Failure      400  {object}  dto.ProblemResponse
// @Failure      303  "redirect para o dashboard sem role de administração"
// @Router       /admin/members/events [get]
func (h *EventHub) Stream(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		problem := dto.NewProblemI18n(c, domainerrors.ProblemTypeBadRequest, "error.validation.title", "error.validation.detail", http.StatusBadRequest)
		dto.AbortWithProblem(c, problem)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade já respondeu ao cliente
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &eventClient{send: make(chan []byte, clientBuffer)}
	h.register(client)

	go h.readLoop(conn, client)
	h.writeLoop(conn, client)
}

func (h *EventHub) register(client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *EventHub) unregister(client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// readLoop descarta mensagens do cliente e detecta o fechamento
func (h *EventHub) readLoop(conn *websocket.Conn, client *eventClient) {
	defer h.unregister(client)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writeLoop(conn *websocket.Conn, client *eventClient) {
	defer conn.Close()

	for payload := range client.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(client)
			return
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
