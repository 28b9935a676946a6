package repository

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"comoresmarket/internal/domain/entity"
)

type profileRow struct {
	ID            string `gorm:"primaryKey;size:128"`
	Email         string `gorm:"size:255;index"`
	FullName      string `gorm:"size:255"`
	AvatarURL     string `gorm:"size:1024"`
	IsPro         bool   `gorm:"index"`
	ProSince      *time.Time
	City          string `gorm:"size:128"`
	Island        string `gorm:"size:32"`
	PhoneNumber   string `gorm:"size:32"`
	IsBanned      bool   `gorm:"index"`
	EmailVerified bool
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (profileRow) TableName() string { return "profiles" }

func newProfileRow(p *entity.Profile) *profileRow {
	return &profileRow{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		AvatarURL:     p.AvatarURL,
		IsPro:         p.IsPro,
		ProSince:      p.ProSince,
		City:          p.City,
		Island:        p.Island,
		PhoneNumber:   p.PhoneNumber,
		IsBanned:      p.IsBanned,
		EmailVerified: p.EmailVerified,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r *profileRow) toEntity() *entity.Profile {
	return &entity.Profile{
		ID:            r.ID,
		Email:         r.Email,
		FullName:      r.FullName,
		AvatarURL:     r.AvatarURL,
		IsPro:         r.IsPro,
		ProSince:      r.ProSince,
		City:          r.City,
		Island:        r.Island,
		PhoneNumber:   r.PhoneNumber,
		IsBanned:      r.IsBanned,
		EmailVerified: r.EmailVerified,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type productRow struct {
	ID             string `gorm:"primaryKey;size:128"`
	Title          string `gorm:"size:255;not null"`
	Description    string `gorm:"type:text"`
	Price          int64  `gorm:"not null;index"`
	Images         datatypes.JSON
	CategoryID     string    `gorm:"size:64;index"`
	SubCategory    string    `gorm:"size:64;index"`
	LocationIsland string    `gorm:"size:32;index"`
	LocationCity   string    `gorm:"size:128"`
	UserID         string    `gorm:"size:128;index"`
	WhatsappNumber string    `gorm:"size:32"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (productRow) TableName() string { return "products" }

func newProductRow(p *entity.Product) *productRow {
	images := p.Images
	if images == nil {
		images = entity.ImageList{}
	}
	encoded, _ := json.Marshal(images)

	return &productRow{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Images:         datatypes.JSON(encoded),
		CategoryID:     p.CategoryID,
		SubCategory:    p.SubCategory,
		LocationIsland: p.LocationIsland,
		LocationCity:   p.LocationCity,
		UserID:         p.UserID,
		WhatsappNumber: p.WhatsappNumber,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		Images:         entity.ParseImageList(string(r.Images)),
		CategoryID:     r.CategoryID,
		SubCategory:    r.SubCategory,
		LocationIsland: r.LocationIsland,
		LocationCity:   r.LocationCity,
		UserID:         r.UserID,
		WhatsappNumber: r.WhatsappNumber,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type messageRow struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Content    string    `gorm:"type:text;not null"`
	SenderID   string    `gorm:"size:128;index;index:idx_message_thread,priority:2"`
	ReceiverID string    `gorm:"size:128;index;index:idx_message_thread,priority:3"`
	ProductID  string    `gorm:"size:128;index:idx_message_thread,priority:1"`
	CreatedAt  time.Time `gorm:"index"`
	IsRead     bool      `gorm:"index"`
}

func (messageRow) TableName() string { return "messages" }

func newMessageRow(m *entity.Message) *messageRow {
	return &messageRow{
		ID:         m.ID,
		Content:    m.Content,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		ProductID:  m.ProductID,
		CreatedAt:  m.CreatedAt,
		IsRead:     m.IsRead,
	}
}

func (r *messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:         r.ID,
		Content:    r.Content,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		ProductID:  r.ProductID,
		CreatedAt:  r.CreatedAt,
		IsRead:     r.IsRead,
	}
}

type favoriteRow struct {
	ID        string    `gorm:"primaryKey;size:256"`
	UserID    string    `gorm:"size:128;uniqueIndex:idx_favorite_user_product"`
	ProductID string    `gorm:"size:128;uniqueIndex:idx_favorite_user_product;index"`
	CreatedAt time.Time `gorm:"index"`
}

func (favoriteRow) TableName() string { return "favorites" }

func (r *favoriteRow) toEntity() *entity.Favorite {
	return &entity.Favorite{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
	}
}

type reportRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	ProductID  string `gorm:"size:128;index"`
	ReporterID string `gorm:"size:128;index"`
	Reason     string `gorm:"size:64"`
	Details    string `gorm:"type:text"`
	Status     string `gorm:"size:16;index"`
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

func (reportRow) TableName() string { return "reports" }

func newReportRow(r *entity.Report) *reportRow {
	return &reportRow{
		ID:         r.ID,
		ProductID:  r.ProductID,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Details:    r.Details,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

func (r *reportRow) toEntity() *entity.Report {
	return &entity.Report{
		ID:         r.ID,
		ProductID:  r.ProductID,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Details:    r.Details,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

type productViewRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	ProductID string    `gorm:"size:128;index"`
	ViewerID  *string   `gorm:"size:128;index"`
	CreatedAt time.Time `gorm:"index"`
}

func (productViewRow) TableName() string { return "product_views" }

func newProductViewRow(v *entity.ProductView) *productViewRow {
	row := &productViewRow{
		ID:        v.ID,
		ProductID: v.ProductID,
		CreatedAt: v.CreatedAt,
	}
	if v.ViewerID != "" {
		viewer := v.ViewerID
		row.ViewerID = &viewer
	}
	return row
}

func (r *productViewRow) toEntity() *entity.ProductView {
	view := &entity.ProductView{
		ID:        r.ID,
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
	}
	if r.ViewerID != nil {
		view.ViewerID = *r.ViewerID
	}
	return view
}
