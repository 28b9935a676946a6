package entity

import (
	"time"
)

const (
	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)

type Report struct {
	ID         string     `json:"id" firestore:"id"`
	ProductID  string     `json:"product_id" firestore:"productId"`
	ReporterID string     `json:"reporter_id" firestore:"reporterId"`
	Reason     string     `json:"reason" firestore:"reason"`
	Details    string     `json:"details,omitempty" firestore:"details"`
	Status     string     `json:"status" firestore:"status"`
	CreatedAt  time.Time  `json:"created_at" firestore:"createdAt"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" firestore:"resolvedAt"`
}
