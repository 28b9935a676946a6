package handler

import (
	"context"

	"comoresmarket/internal/adapter/api/middleware"
	"comoresmarket/internal/domain/service"
	ws "comoresmarket/internal/infrastructure/websocket"
	"comoresmarket/internal/usecase"
)

// Dependencies are the collaborators the HTTP handlers are built from.
type Dependencies struct {
	BaseContext    context.Context
	Auth           *usecase.AuthUseCase
	Listings       *usecase.ListingUseCase
	Profiles       *usecase.ProfileUseCase
	Favorites      *usecase.FavoriteUseCase
	Messages       *usecase.MessageUseCase
	Admin          *usecase.AdminUseCase
	Seo            *usecase.SeoUseCase
	Storage        service.FileUploadService
	Realtime       *ws.Manager
	Admins         middleware.AdminChecker
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck
}

var (
	authHandler         *AuthHandler
	listingHandler      *ListingHandler
	profileHandler      *ProfileHandler
	favoriteHandler     *FavoriteHandler
	conversationHandler *ConversationHandler
	uploadHandler       *UploadHandler
	adminHandler        *AdminHandler
	seoHandler          *SeoHandler
	webSocketHandler    *WebSocketHandler
	healthHandler       *HealthHandler
)

func Setup(deps Dependencies) {
	baseCtx := deps.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	authHandler = NewAuthHandler(deps.Auth)
	listingHandler = NewListingHandler(deps.Listings, deps.Admins)
	profileHandler = NewProfileHandler(deps.Profiles)
	favoriteHandler = NewFavoriteHandler(deps.Favorites)
	conversationHandler = NewConversationHandler(deps.Messages)
	uploadHandler = NewUploadHandler(deps.Storage)
	adminHandler = NewAdminHandler(deps.Admin)
	seoHandler = NewSeoHandler(deps.Seo)
	webSocketHandler = NewWebSocketHandler(baseCtx, deps.Realtime, deps.AllowedOrigins)
	healthHandler = NewHealthHandler(deps.HealthChecks)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetConversationHandler() *ConversationHandler {
	return conversationHandler
}

func GetUploadHandler() *UploadHandler {
	return uploadHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetSeoHandler() *SeoHandler {
	return seoHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
