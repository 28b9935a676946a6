package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	profile.Email = strings.ToLower(profile.Email)

	_, err := r.client.Collection("profiles").Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to create profile", err)
	}
	return nil
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection("profiles").Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, errors.NotFound("Profile", err)
		}
		return nil, errors.Internal("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	return &profile, nil
}

func (r *firestoreProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	docs, err := r.client.Collection("profiles").
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to get profile by email", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Profile", nil)
	}

	var profile entity.Profile
	if err := docs[0].DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	return &profile, nil
}

func (r *firestoreProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	profiles := make(map[string]*entity.Profile)

	for _, batch := range chunkIDs(uniqueIDs(ids), firestoreBatchSize) {
		refs := make([]*firestore.DocumentRef, len(batch))
		for i, id := range batch {
			refs[i] = r.client.Collection("profiles").Doc(id)
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errors.Internal("Failed to get profiles", err)
		}

		for _, doc := range docs {
			if doc == nil || !doc.Exists() {
				continue
			}
			var profile entity.Profile
			if err := doc.DataTo(&profile); err != nil {
				logger.Warn("Skipping unreadable profile %s: %v", doc.Ref.ID, err)
				continue
			}
			profiles[doc.Ref.ID] = &profile
		}
	}

	return profiles, nil
}

func (r *firestoreProfileRepository) filtered(ctx context.Context, filter repository.ProfileFilter) ([]*entity.Profile, error) {
	query := r.client.Collection("profiles").Query
	if filter.IsPro != nil {
		query = query.Where("isPro", "==", *filter.IsPro)
	}
	if filter.IsBanned != nil {
		query = query.Where("isBanned", "==", *filter.IsBanned)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filter.Query))
	profiles := make([]*entity.Profile, 0, len(docs))
	for _, doc := range docs {
		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(profile.FullName), needle) &&
			!strings.Contains(profile.Email, needle) {
			continue
		}
		profiles = append(profiles, &profile)
	}

	sortProfilesNewestFirst(profiles)
	return profiles, nil
}

func (r *firestoreProfileRepository) List(ctx context.Context, filter repository.ProfileFilter, limit, offset int) ([]*entity.Profile, int64, error) {
	profiles, err := r.filtered(ctx, filter)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list profiles", err)
	}
	return pageOf(profiles, limit, offset), int64(len(profiles)), nil
}

func (r *firestoreProfileRepository) Count(ctx context.Context, filter repository.ProfileFilter) (int64, error) {
	if filter.Query == "" {
		query := r.client.Collection("profiles").Query
		if filter.IsPro != nil {
			query = query.Where("isPro", "==", *filter.IsPro)
		}
		if filter.IsBanned != nil {
			query = query.Where("isBanned", "==", *filter.IsBanned)
		}
		count, err := countQuery(ctx, query)
		if err != nil {
			return 0, errors.Internal("Failed to count profiles", err)
		}
		return count, nil
	}

	profiles, err := r.filtered(ctx, filter)
	if err != nil {
		return 0, errors.Internal("Failed to count profiles", err)
	}
	return int64(len(profiles)), nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now()

	_, err := r.client.Collection("profiles").Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to update profile", err)
	}
	return nil
}

func (r *firestoreProfileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("profiles").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete profile", err)
	}
	return nil
}
