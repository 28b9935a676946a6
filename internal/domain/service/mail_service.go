package service

import (
	"context"
)

type NewMessageMail struct {
	To              string
	RecipientName   string
	SenderName      string
	ProductTitle    string
	Preview         string
	ConversationURL string
}

type MailService interface {
	SendNewMessage(ctx context.Context, mail NewMessageMail) error
	SendVerificationCode(ctx context.Context, to, name, code string) error
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}
