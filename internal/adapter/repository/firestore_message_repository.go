package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) collection() *firestore.CollectionRef {
	return r.client.Collection("messages")
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = r.collection().NewDoc().ID
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.collection().Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) fetch(ctx context.Context, queries ...firestore.Query) ([]*entity.Message, error) {
	results := make([][]*entity.Message, len(queries))
	g, gctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			docs, err := q.Documents(gctx).GetAll()
			if err != nil {
				return err
			}
			batch := make([]*entity.Message, 0, len(docs))
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping unreadable message %s: %v", doc.Ref.ID, err)
					continue
				}
				batch = append(batch, &message)
			}
			results[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var messages []*entity.Message
	for _, batch := range results {
		messages = append(messages, batch...)
	}
	sortMessagesAsc(messages)
	return messages, nil
}

func (r *firestoreMessageRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	messages, err := r.fetch(ctx,
		r.collection().Where("senderId", "==", userID),
		r.collection().Where("receiverId", "==", userID),
	)
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

func (r *firestoreMessageRepository) direction(productID, senderID, receiverID string) firestore.Query {
	return r.collection().
		Where("productId", "==", productID).
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID)
}

func (r *firestoreMessageRepository) ListThread(ctx context.Context, productID, userA, userB string) ([]*entity.Message, error) {
	messages, err := r.fetch(ctx,
		r.direction(productID, userA, userB),
		r.direction(productID, userB, userA),
	)
	if err != nil {
		return nil, errors.Internal("Failed to list conversation messages", err)
	}
	return messages, nil
}

func (r *firestoreMessageRepository) MarkThreadRead(ctx context.Context, productID, senderID, receiverID string) (int64, error) {
	docs, err := r.direction(productID, senderID, receiverID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to load unread messages", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Update(doc.Ref, []firestore.Update{{Path: "isRead", Value: true}})
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to mark messages as read", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var updated int64
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return updated, errors.Internal("Failed to mark messages as read", err)
		}
		updated++
	}
	return updated, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	count, err := countQuery(ctx, r.collection().
		Where("receiverId", "==", receiverID).
		Where("isRead", "==", false))
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return count, nil
}

func (r *firestoreMessageRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	count, err := countQuery(ctx, r.collection().Where("productId", "==", productID))
	if err != nil {
		return 0, errors.Internal("Failed to count messages", err)
	}
	return count, nil
}

func (r *firestoreMessageRepository) DeleteDirection(ctx context.Context, productID, senderID, receiverID string) error {
	if _, err := deleteQuery(ctx, r.client, r.direction(productID, senderID, receiverID)); err != nil {
		return errors.Internal("Failed to delete messages", err)
	}
	return nil
}

func (r *firestoreMessageRepository) DeleteByUser(ctx context.Context, userID string) error {
	for _, field := range []string{"senderId", "receiverId"} {
		if _, err := deleteQuery(ctx, r.client, r.collection().Where(field, "==", userID)); err != nil {
			return errors.Internal("Failed to delete user messages", err)
		}
	}
	return nil
}
