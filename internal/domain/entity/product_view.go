package entity

import (
	"time"
)

// ProductView is one logged visit of a listing page. ViewerID is empty for
// anonymous visitors.
type ProductView struct {
	ID        string    `json:"id" firestore:"id"`
	ProductID string    `json:"product_id" firestore:"productId"`
	ViewerID  string    `json:"viewer_id,omitempty" firestore:"viewerId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type Viewer struct {
	Profile  *ProfileSummary `json:"profile"`
	ViewedAt time.Time       `json:"viewed_at"`
}

type ListingStats struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Views          int64  `json:"views"`
	UniqueViewers  int64  `json:"unique_viewers"`
	FavoritesCount int64  `json:"favorites_count"`
	MessagesCount  int64  `json:"messages_count"`
}
