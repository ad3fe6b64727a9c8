package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"social_quests_api/internal/service"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	fetchTimeout   = 5 * time.Second
	sendBufferSize = 8
)

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsClient owns a single connection. Its writeLoop is the only goroutine
// allowed to write to conn; everything outbound goes through send.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()

	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// LeaderboardHub pushes a fresh leaderboard snapshot to connected websocket
// clients whenever a quest completion changes the standings. It implements
// service.LeaderboardNotifier.
type LeaderboardHub struct {
	us       service.UserServiceI
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}

	// single-slot notification channel, pending refreshes coalesce
	notify chan struct{}
}

func NewLeaderboardHub(us service.UserServiceI) *LeaderboardHub {
	h := &LeaderboardHub{
		us: us,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
		notify:  make(chan struct{}, 1),
	}

	go h.run()
	return h
}

func (h *LeaderboardHub) Register(router *gin.Engine) {
	router.GET("/ws/leaderboard", h.serve)
}

// LeaderboardChanged schedules a broadcast without blocking the caller.
func (h *LeaderboardHub) LeaderboardChanged() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *LeaderboardHub) run() {
	for range h.notify {
		h.broadcast()
	}
}

func (h *LeaderboardHub) serve(c *gin.Context) {
	log := logger.Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	// queue the initial snapshot before the hub can broadcast to this
	// client, so it is always the first frame delivered
	if frame, err := h.snapshot(); err == nil {
		client.send <- frame
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writeLoop()

	// reader loop only detects disconnects, inbound frames are discarded
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(client)
				return
			}
		}
	}()
}

func (h *LeaderboardHub) drop(client *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	// closing send ends writeLoop, which closes the connection
	if ok {
		close(client.send)
	}
}

func (h *LeaderboardHub) snapshot() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	users, err := h.us.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wsMessage{
		Type: "leaderboard",
		Data: leaderboardResponse(users),
	})
}

func (h *LeaderboardHub) broadcast() {
	log := logger.Logger()

	frame, err := h.snapshot()
	if err != nil {
		log.Error("failed to build leaderboard frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		select {
		case client.send <- frame:
		default:
			// client is not draining its buffer, cut it loose
			h.drop(client)
		}
	}
}
