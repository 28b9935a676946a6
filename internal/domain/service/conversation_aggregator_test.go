package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comoresmarket/internal/domain/entity"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func msg(id, from, to, product string, minute int, read bool) *entity.Message {
	return &entity.Message{
		ID:         id,
		Content:    "message " + id,
		SenderID:   from,
		ReceiverID: to,
		ProductID:  product,
		CreatedAt:  base.Add(time.Duration(minute) * time.Minute),
		IsRead:     read,
	}
}

func sampleMessages() []*entity.Message {
	return []*entity.Message{
		msg("1", "bob", "alice", "p1", 1, true),
		msg("2", "alice", "bob", "p1", 2, false),
		msg("3", "carol", "alice", "p1", 3, false),
		msg("4", "bob", "alice", "p1", 4, false),
		msg("5", "bob", "alice", "p2", 5, false),
		msg("6", "carol", "alice", "p1", 6, false),
		{
			ID: "7", Content: entity.ImageContent("https://cdn/chat-images/a.jpg"),
			SenderID: "bob", ReceiverID: "alice", ProductID: "p2",
			CreatedAt: base.Add(7 * time.Minute),
		},
	}
}

func TestAggregateConversations_Grouping(t *testing.T) {
	profiles := map[string]*entity.Profile{
		"bob":   {ID: "bob", FullName: "Bob", IsPro: true},
		"carol": {ID: "carol", FullName: "Carol"},
	}
	products := map[string]*entity.Product{
		"p1": {ID: "p1", Title: "Scooter", Price: 350000, Images: entity.ImageList{"https://cdn/p1.jpg"}},
	}

	convs := AggregateConversations("alice", sampleMessages(), profiles, products)
	require.Len(t, convs, 3)

	assert.Equal(t, "p2|bob", convs[0].Key)
	assert.Equal(t, "p1|carol", convs[1].Key)
	assert.Equal(t, "p1|bob", convs[2].Key)

	assert.Equal(t, entity.ImagePlaceholder, convs[0].LastMessage)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.Nil(t, convs[0].Product)
	assert.Equal(t, "Bob", convs[0].Counterpart.FullName)

	assert.Equal(t, "message 4", convs[2].LastMessage)
	assert.Equal(t, 1, convs[2].UnreadCount)
	assert.Equal(t, "https://cdn/p1.jpg", convs[2].Product.Image)
	assert.Equal(t, []string{"1", "2", "4"}, ids(convs[2].Messages))
}

func TestAggregateConversations_Partition(t *testing.T) {
	messages := sampleMessages()
	convs := AggregateConversations("alice", messages, nil, nil)

	seen := make(map[string]int)
	for _, c := range convs {
		for _, m := range c.Messages {
			seen[m.ID]++
			assert.Equal(t, c.Key, entity.ConversationKey(m.ProductID, m.CounterpartOf("alice")))
		}
	}
	assert.Len(t, seen, len(messages))
	for id, n := range seen {
		assert.Equal(t, 1, n, "message %s", id)
	}
}

func TestAggregateConversations_UnreadMatchesRows(t *testing.T) {
	for _, c := range AggregateConversations("alice", sampleMessages(), nil, nil) {
		want := 0
		for _, m := range c.Messages {
			if m.ReceiverID == "alice" && !m.IsRead {
				want++
			}
		}
		assert.Equal(t, want, c.UnreadCount, c.Key)
	}
}

func TestAggregateConversations_Idempotent(t *testing.T) {
	messages := sampleMessages()
	first := AggregateConversations("alice", messages, nil, nil)
	second := AggregateConversations("alice", messages, nil, nil)
	assert.Equal(t, first, second)
}

func TestAggregateConversations_TiesOrderedByKey(t *testing.T) {
	messages := []*entity.Message{
		msg("1", "zoe", "alice", "p9", 1, false),
		msg("2", "bob", "alice", "p9", 1, false),
	}
	convs := AggregateConversations("alice", messages, nil, nil)
	require.Len(t, convs, 2)
	assert.Equal(t, "p9|bob", convs[0].Key)
	assert.Equal(t, "p9|zoe", convs[1].Key)
}

func TestAggregateConversations_IgnoresForeignMessages(t *testing.T) {
	messages := []*entity.Message{msg("1", "bob", "carol", "p1", 1, false), nil}
	assert.Empty(t, AggregateConversations("alice", messages, nil, nil))
}

func TestNewStubConversation(t *testing.T) {
	product := &entity.Product{ID: "p1", Title: "Terrain à Mitsamiouli", UserID: "bob"}
	seller := &entity.Profile{ID: "bob", FullName: "Bob"}

	conv := NewStubConversation(product, seller)
	assert.True(t, conv.IsStub)
	assert.Equal(t, "p1|bob", conv.Key)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, 0, conv.UnreadCount)
	assert.Equal(t, "Terrain à Mitsamiouli", conv.Product.Title)
}

func TestUniqueViewers(t *testing.T) {
	views := []*entity.ProductView{
		{ID: "a", ViewerID: "bob", CreatedAt: base.Add(1 * time.Minute)},
		{ID: "b", ViewerID: "", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c", ViewerID: "carol", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "d", ViewerID: "bob", CreatedAt: base.Add(4 * time.Minute)},
	}

	unique := UniqueViewers(views)
	require.Len(t, unique, 2)
	assert.Equal(t, "d", unique[0].ID)
	assert.Equal(t, "c", unique[1].ID)
}

func ids(messages []*entity.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}
