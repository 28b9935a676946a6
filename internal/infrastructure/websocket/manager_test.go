package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/infrastructure/metrics"
)

type recordingListener struct {
	mu    sync.Mutex
	users []string
}

func (l *recordingListener) OnSubscribe(_ context.Context, userID string) {
	l.mu.Lock()
	l.users = append(l.users, userID)
	l.mu.Unlock()
}

type recordingMarker struct {
	calls [][3]string
}

func (r *recordingMarker) MarkConversationRead(_ context.Context, userID, productID, counterpartID string) (int64, error) {
	r.calls = append(r.calls, [3]string{userID, productID, counterpartID})
	return 1, nil
}

func newTestClient(userID string) *Client {
	return NewClient(userID, nil)
}

func drain(t *testing.T, c *Client) []entity.RealtimeEvent {
	t.Helper()
	var events []entity.RealtimeEvent
	for {
		select {
		case payload, ok := <-c.Send:
			if !ok {
				return events
			}
			var ev entity.RealtimeEvent
			require.NoError(t, json.Unmarshal(payload, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestManager_ReferenceCountedSubscriptions(t *testing.T) {
	m := NewManager(metrics.New())
	c := newTestClient("alice")
	topic := "listing:p1"

	assert.Equal(t, 1, m.Subscribe(c, topic))
	assert.Equal(t, 2, m.Subscribe(c, topic))

	assert.Equal(t, 1, m.Publish(topic, entity.NewRealtimeEvent("conversation.changed", nil)))
	assert.Len(t, drain(t, c), 1)

	assert.Equal(t, 1, m.Unsubscribe(c, topic))
	assert.Equal(t, 1, m.SubscriberCount(topic))
	assert.Equal(t, 0, m.Unsubscribe(c, topic))
	assert.Equal(t, 0, m.SubscriberCount(topic))
	assert.Equal(t, 0, m.Publish(topic, entity.NewRealtimeEvent("conversation.changed", nil)))
}

func TestManager_RegisterNotifiesListener(t *testing.T) {
	m := NewManager(nil)
	listener := &recordingListener{}
	m.SetHandlers(nil, listener)

	c := newTestClient("bob")
	m.Register(context.Background(), c)

	assert.Equal(t, []string{"bob"}, listener.users)
	assert.Equal(t, 1, m.SubscriberCount(entity.UserTopic("bob")))

	m.Unregister(c)
	m.Unregister(c)
	assert.Equal(t, 0, m.SubscriberCount(entity.UserTopic("bob")))
	_, open := <-c.Send
	assert.False(t, open)
}

func TestManager_SkipsRoutePrefix(t *testing.T) {
	m := NewManager(nil)
	onMessages := newTestClient("bob")
	elsewhere := newTestClient("bob")
	m.Register(context.Background(), onMessages)
	m.Register(context.Background(), elsewhere)
	onMessages.SetRoute("/messages?product=p1")
	elsewhere.SetRoute("/annonce/p1")

	toast := entity.NewRealtimeEvent(entity.EventMessageNew, entity.MessageToastPayload{Body: "Bonjour"})
	toast.SkipRoutePrefix = "/messages"
	assert.Equal(t, 1, m.Publish(entity.UserTopic("bob"), toast))

	badge := entity.NewRealtimeEvent(entity.EventUnreadCount, entity.UnreadCountPayload{Count: 1})
	assert.Equal(t, 2, m.Publish(entity.UserTopic("bob"), badge))

	assert.Len(t, drain(t, onMessages), 1)
	assert.Len(t, drain(t, elsewhere), 2)
}

func TestManager_DropsSlowClients(t *testing.T) {
	m := NewManager(nil)
	c := newTestClient("carol")
	m.Register(context.Background(), c)

	for i := 0; i < sendBufferSize; i++ {
		require.Equal(t, 1, m.Publish(entity.UserTopic("carol"), entity.NewRealtimeEvent("tick", i)))
	}
	assert.Equal(t, 0, m.Publish(entity.UserTopic("carol"), entity.NewRealtimeEvent("tick", "overflow")))
	assert.Equal(t, 0, m.SubscriberCount(entity.UserTopic("carol")))
}

func TestHandleClientMessage(t *testing.T) {
	m := NewManager(nil)
	marker := &recordingMarker{}
	m.SetHandlers(marker, nil)

	c := newTestClient("alice")
	m.Register(context.Background(), c)

	m.HandleClientMessage(context.Background(), c, []byte(`{"type":"route","data":{"path":"/messages"}}`))
	assert.Equal(t, "/messages", c.Route())

	m.HandleClientMessage(context.Background(), c, []byte(`{"type":"mark_read","data":{"product_id":"p1","user_id":"bob"}}`))
	assert.Equal(t, [][3]string{{"alice", "p1", "bob"}}, marker.calls)

	m.HandleClientMessage(context.Background(), c, []byte(`{"type":"ping"}`))
	m.HandleClientMessage(context.Background(), c, []byte(`not json`))

	events := drain(t, c)
	require.Len(t, events, 2)
	assert.Equal(t, entity.EventPong, events[0].Type)
	assert.Equal(t, entity.EventError, events[1].Type)
}
