package entity

import (
	"time"
)

type Profile struct {
	ID            string     `json:"id" firestore:"id"`
	Email         string     `json:"email,omitempty" firestore:"email"`
	FullName      string     `json:"full_name" firestore:"fullName"`
	AvatarURL     string     `json:"avatar_url,omitempty" firestore:"avatarUrl"`
	IsPro         bool       `json:"is_pro" firestore:"isPro"`
	ProSince      *time.Time `json:"pro_since,omitempty" firestore:"proSince"`
	City          string     `json:"city,omitempty" firestore:"city"`
	Island        string     `json:"island,omitempty" firestore:"island"`
	PhoneNumber   string     `json:"phone_number,omitempty" firestore:"phoneNumber"`
	IsBanned      bool       `json:"is_banned" firestore:"isBanned"`
	EmailVerified bool       `json:"email_verified" firestore:"emailVerified"`
	CreatedAt     time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// ProfileSummary is the public projection of a profile shown next to
// listings and conversations.
type ProfileSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsPro     bool   `json:"is_pro"`
	City      string `json:"city,omitempty"`
}

func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		ID:        p.ID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		IsPro:     p.IsPro,
		City:      p.City,
	}
}

// PublicProfile is what other users see on /profil/:id. The phone number is
// only disclosed for PRO sellers.
type PublicProfile struct {
	ProfileSummary
	Island      string    `json:"island,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	MemberSince time.Time `json:"member_since"`
}

func (p *Profile) Public() *PublicProfile {
	public := &PublicProfile{
		ProfileSummary: *p.Summary(),
		Island:         p.Island,
		MemberSince:    p.CreatedAt,
	}
	if p.IsPro {
		public.PhoneNumber = p.PhoneNumber
	}
	return public
}
