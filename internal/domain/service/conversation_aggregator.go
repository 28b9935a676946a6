package service

import (
	"sort"

	"comoresmarket/internal/domain/entity"
)

// AggregateConversations groups the messages of currentUserID into one
// conversation per (product, counterpart). Messages must be sorted by
// creation time ascending; the result is sorted by last activity, newest
// first, ties broken by key.
func AggregateConversations(
	currentUserID string,
	messages []*entity.Message,
	profiles map[string]*entity.Profile,
	products map[string]*entity.Product,
) []*entity.Conversation {
	buckets := make(map[string]*entity.Conversation)
	order := make([]*entity.Conversation, 0)

	for _, m := range messages {
		if m == nil {
			continue
		}
		if m.SenderID != currentUserID && m.ReceiverID != currentUserID {
			continue
		}

		counterpartID := m.CounterpartOf(currentUserID)
		key := entity.ConversationKey(m.ProductID, counterpartID)

		conv, ok := buckets[key]
		if !ok {
			conv = &entity.Conversation{
				Key:           key,
				ProductID:     m.ProductID,
				CounterpartID: counterpartID,
				Counterpart:   profiles[counterpartID].Summary(),
				Product:       products[m.ProductID].Summary(),
				Messages:      make([]*entity.Message, 0, 4),
			}
			buckets[key] = conv
			order = append(order, conv)
		}

		conv.Messages = append(conv.Messages, m)
		if !m.CreatedAt.Before(conv.LastMessageAt) {
			conv.LastMessage = m.Preview()
			conv.LastMessageAt = m.CreatedAt
		}
		if m.ReceiverID == currentUserID && !m.IsRead {
			conv.UnreadCount++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		return a.Key < b.Key
	})

	return order
}

// NewStubConversation builds the placeholder shown before the first message
// of a thread is sent.
func NewStubConversation(product *entity.Product, counterpart *entity.Profile) *entity.Conversation {
	conv := &entity.Conversation{
		Product:     product.Summary(),
		Counterpart: counterpart.Summary(),
		Messages:    []*entity.Message{},
		IsStub:      true,
	}
	if product != nil {
		conv.ProductID = product.ID
	}
	if counterpart != nil {
		conv.CounterpartID = counterpart.ID
	}
	conv.Key = entity.ConversationKey(conv.ProductID, conv.CounterpartID)
	return conv
}

// UniqueViewers keeps the most recent view of each known viewer, newest
// first. Anonymous views are skipped.
func UniqueViewers(views []*entity.ProductView) []*entity.ProductView {
	sorted := make([]*entity.ProductView, 0, len(views))
	for _, v := range views {
		if v != nil {
			sorted = append(sorted, v)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	seen := make(map[string]struct{}, len(sorted))
	unique := make([]*entity.ProductView, 0, len(sorted))
	for _, v := range sorted {
		if v.ViewerID == "" {
			continue
		}
		if _, ok := seen[v.ViewerID]; ok {
			continue
		}
		seen[v.ViewerID] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
