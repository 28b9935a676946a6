package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/infrastructure/metrics"
	"comoresmarket/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// ReadMarker marks a conversation read on behalf of a connected user.
type ReadMarker interface {
	MarkConversationRead(ctx context.Context, userID, productID, counterpartID string) (int64, error)
}

// SubscriptionListener is told when a user opens a new connection.
type SubscriptionListener interface {
	OnSubscribe(ctx context.Context, userID string)
}

// Client represents a WebSocket connection client
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu        sync.RWMutex
	route     string
	closeOnce sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Route is the page path last reported by the client.
func (c *Client) Route() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.route
}

func (c *Client) SetRoute(route string) {
	c.mu.Lock()
	c.route = route
	c.mu.Unlock()
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Manager is the realtime hub. Connections subscribe to topics; a client
// holding several subscriptions to the same topic receives each event once
// and stays subscribed until every subscription is released.
type Manager struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]int
	owned  map[*Client]map[string]struct{}

	readMarker ReadMarker
	listener   SubscriptionListener
	metrics    *metrics.Metrics
}

func NewManager(m *metrics.Metrics) *Manager {
	return &Manager{
		topics:  make(map[string]map[*Client]int),
		owned:   make(map[*Client]map[string]struct{}),
		metrics: m,
	}
}

// SetHandlers wires the collaborators that react to client frames.
func (m *Manager) SetHandlers(readMarker ReadMarker, listener SubscriptionListener) {
	m.mu.Lock()
	m.readMarker = readMarker
	m.listener = listener
	m.mu.Unlock()
}

// Register attaches a new connection to its user topic.
func (m *Manager) Register(ctx context.Context, client *Client) {
	m.Subscribe(client, entity.UserTopic(client.UserID))
	if m.metrics != nil {
		m.metrics.RealtimeConnections.Inc()
	}
	logger.Debug("Client registered: %s (%s)", client.UserID, client.ID)

	m.mu.RLock()
	listener := m.listener
	m.mu.RUnlock()
	if listener != nil {
		listener.OnSubscribe(ctx, client.UserID)
	}
}

// Unregister drops every subscription of the client and closes its send
// channel.
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	_, known := m.owned[client]
	m.removeLocked(client)
	m.mu.Unlock()

	if known {
		client.close()
		if m.metrics != nil {
			m.metrics.RealtimeConnections.Dec()
		}
		logger.Debug("Client unregistered: %s (%s)", client.UserID, client.ID)
	}
}

func (m *Manager) removeLocked(client *Client) {
	for topic := range m.owned[client] {
		subs := m.topics[topic]
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.topics, topic)
		}
	}
	delete(m.owned, client)
}

// Subscribe adds one reference from client to topic and returns the
// client's reference count.
func (m *Manager) Subscribe(client *Client, topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.topics[topic]
	if !ok {
		subs = make(map[*Client]int)
		m.topics[topic] = subs
	}
	subs[client]++

	if m.owned[client] == nil {
		m.owned[client] = make(map[string]struct{})
	}
	m.owned[client][topic] = struct{}{}

	return subs[client]
}

// Unsubscribe releases one reference; the client leaves the topic when its
// count drops to zero.
func (m *Manager) Unsubscribe(client *Client, topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.topics[topic]
	if !ok || subs[client] == 0 {
		return 0
	}

	subs[client]--
	remaining := subs[client]
	if remaining == 0 {
		delete(subs, client)
		delete(m.owned[client], topic)
		if len(subs) == 0 {
			delete(m.topics, topic)
		}
	}
	return remaining
}

// SubscriberCount returns the number of distinct connections on a topic.
func (m *Manager) SubscriberCount(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.topics[topic])
}

// Publish delivers the event to every connection on the topic and returns
// how many received it. Connections whose buffer is full are dropped.
func (m *Manager) Publish(topic string, event entity.RealtimeEvent) int {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode realtime event %s: %v", event.Type, err)
		return 0
	}

	var delivered int
	var slow []*Client

	m.mu.RLock()
	for client := range m.topics[topic] {
		if event.SkipRoutePrefix != "" && strings.HasPrefix(client.Route(), event.SkipRoutePrefix) {
			continue
		}
		select {
		case client.Send <- payload:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("Dropping slow websocket client %s (%s)", client.UserID, client.ID)
		m.Unregister(client)
	}

	if delivered > 0 && m.metrics != nil {
		m.metrics.RealtimeEvents.WithLabelValues(event.Type).Add(float64(delivered))
	}
	return delivered
}

// ReadPump reads frames until the connection closes.
func (c *Client) ReadPump(ctx context.Context, m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
		m.HandleClientMessage(ctx, c, message)
	}
}

// WritePump sends queued events and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Websocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
