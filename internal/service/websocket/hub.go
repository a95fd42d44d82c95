package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"ewastevision/internal/logger"
)

const (
	writeWait       = 5 * time.Second
	broadcastBuffer = 16
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is one connected feed subscriber.
type Client struct {
	ID   string
	conn *websocket.Conn
}

// HubService fans detection events out to every connected client.
type HubService struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then closes every client.
func (h *HubService) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mutex.Lock()
		for client := range h.clients {
			client.conn.Close()
			delete(h.clients, client)
		}
		h.mutex.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Feed client %s connected. Total: %d", client.ID, total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.conn.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Feed client %s disconnected. Total: %d", client.ID, total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message to %s: %v", client.ID, err)
					delete(h.clients, client)
					client.conn.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a connection to the hub. It returns nil once the hub has stopped.
func (h *HubService) Register(conn *websocket.Conn) *Client {
	client := &Client{ID: uuid.NewString(), conn: conn}
	select {
	case h.register <- client:
		return client
	case <-h.done:
		return nil
	}
}

// Unregister removes a client and closes its connection.
func (h *HubService) Unregister(client *Client) {
	if client == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client. The message is dropped when the
// hub is backed up, so a slow subscriber never stalls the caller.
func (h *HubService) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		return false
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *HubService) BroadcastJSON(v interface{}) error {
	message, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !h.Broadcast(message) {
		h.logger.Warning("Feed hub busy, dropping event")
	}
	return nil
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
