package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/utils"
)

func listingInput(owner, title string, images ...string) ListingInput {
	if len(images) == 0 {
		images = []string{photo(owner, title)}
	}
	return ListingInput{
		Title:       title,
		Description: "Très bon état",
		Price:       250000,
		Images:      images,
		CategoryID:  "electronique",
		SubCategory: "telephones",
		Island:      entity.IslandNdzuwani,
		City:        "Mutsamudu",
	}
}

func TestListingUseCase_CreateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)

	input := listingInput("seller", "iPhone 12")
	input.WhatsappNumber = "332 00 00"
	product, err := env.listings.Create(ctx, "seller", input)
	require.NoError(t, err)
	assert.Equal(t, "+2693320000", product.WhatsappNumber)
	assert.Equal(t, "seller", product.UserID)

	tests := []struct {
		name   string
		mutate func(*ListingInput)
		code   string
	}{
		{"short title", func(in *ListingInput) { in.Title = "ab" }, "BAD_REQUEST"},
		{"negative price", func(in *ListingInput) { in.Price = -1 }, "BAD_REQUEST"},
		{"unknown category", func(in *ListingInput) { in.CategoryID = "bateaux" }, "BAD_REQUEST"},
		{"foreign sub category", func(in *ListingInput) { in.SubCategory = "motos" }, "BAD_REQUEST"},
		{"unknown island", func(in *ListingInput) { in.Island = "reunion" }, "BAD_REQUEST"},
		{"no photo", func(in *ListingInput) { in.Images = nil }, "BAD_REQUEST"},
		{"foreign whatsapp", func(in *ListingInput) { in.WhatsappNumber = "+33612345678" }, "BAD_REQUEST"},
		{"too many photos", func(in *ListingInput) {
			in.Images = []string{photo("seller", "a"), photo("seller", "b"), photo("seller", "c"), photo("seller", "d")}
		}, "PHOTO_QUOTA_EXCEEDED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := listingInput("seller", "Samsung S21")
			tt.mutate(&in)
			_, err := env.listings.Create(ctx, "seller", in)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestListingUseCase_ListingQuota(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "free", "Free", false)
	env.seedProfile(t, "pro", "Pro", true)
	banned := env.seedProfile(t, "banned", "Banned", false)
	banned.IsBanned = true
	require.NoError(t, env.repos.Profiles.Update(ctx, banned))

	for _, title := range []string{"Annonce 1", "Annonce 2"} {
		_, err := env.listings.Create(ctx, "free", listingInput("free", title))
		require.NoError(t, err)
	}
	_, err := env.listings.Create(ctx, "free", listingInput("free", "Annonce 3"))
	assert.True(t, errors.Is(err, "LISTING_QUOTA_EXCEEDED"))

	for _, title := range []string{"Pro 1", "Pro 2", "Pro 3"} {
		_, err := env.listings.Create(ctx, "pro", listingInput("pro", title,
			photo("pro", "a"), photo("pro", "b"), photo("pro", "c"), photo("pro", "d"), photo("pro", "e")))
		require.NoError(t, err)
	}

	_, err = env.listings.Create(ctx, "banned", listingInput("banned", "Interdit"))
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListingUseCase_GetContactAndViews(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	env.seedProfile(t, "pro", "Pro", true)
	env.seedProfile(t, "buyer", "Buyer", false)
	env.seedProfile(t, "other", "Other", false)
	product := env.seedProduct(t, "seller", "Ordinateur")
	proProduct := env.seedProduct(t, "pro", "Groupe électrogène")

	detail, err := env.listings.Get(ctx, product.ID, "buyer")
	require.NoError(t, err)
	assert.Empty(t, detail.Product.WhatsappNumber)
	assert.False(t, detail.IsOwner)
	assert.Equal(t, "Seller", detail.Seller.FullName)

	detail, err = env.listings.Get(ctx, product.ID, "seller")
	require.NoError(t, err)
	assert.Equal(t, "+2693320000", detail.Product.WhatsappNumber)
	assert.True(t, detail.IsOwner)

	detail, err = env.listings.Get(ctx, proProduct.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "+2693320000", detail.Product.WhatsappNumber)

	_, err = env.favorites.Add(ctx, "buyer", product.ID)
	require.NoError(t, err)
	detail, err = env.listings.Get(ctx, product.ID, "buyer")
	require.NoError(t, err)
	assert.True(t, detail.IsFavorite)

	_, err = env.listings.Get(ctx, product.ID, "other")
	require.NoError(t, err)
	_, err = env.listings.Get(ctx, product.ID, "")
	require.NoError(t, err)
	_, err = env.listings.Get(ctx, product.ID, "")
	require.NoError(t, err)

	views, err := env.repos.Views.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	// buyer once, other once, two anonymous visits, none for the owner.
	assert.Len(t, views, 4)

	viewers, err := env.listings.Viewers(ctx, "seller", product.ID)
	require.NoError(t, err)
	require.Len(t, viewers, 2)
	assert.Equal(t, "Other", viewers[0].Profile.FullName)
	assert.Equal(t, "Buyer", viewers[1].Profile.FullName)

	_, err = env.listings.Viewers(ctx, "buyer", product.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = env.messages.Send(ctx, "buyer", SendMessageInput{ProductID: product.ID, ReceiverID: "seller", Content: "Bonjour"})
	require.NoError(t, err)

	stats, err := env.listings.Stats(ctx, "seller")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, product.ID, stats[0].ProductID)
	assert.Equal(t, int64(4), stats[0].Views)
	assert.Equal(t, int64(2), stats[0].UniqueViewers)
	assert.Equal(t, int64(1), stats[0].FavoritesCount)
	assert.Equal(t, int64(1), stats[0].MessagesCount)
}

func TestListingUseCase_ListHidesContact(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	env.seedProduct(t, "seller", "Moto Honda")
	env.seedProduct(t, "seller", "Télévision Samsung")

	products, total, err := env.listings.List(ctx, repository.ProductFilter{Query: "moto"}, utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Empty(t, products[0].WhatsappNumber)

	mine, total, err := env.listings.ListMine(ctx, "seller", utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.NotEmpty(t, mine[0].WhatsappNumber)

	_, _, err = env.listings.List(ctx, repository.ProductFilter{MinPrice: 10, MaxPrice: 5}, utils.NewPaginationParams(1, 10))
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestListingUseCase_UpdateDeletesDroppedPhotos(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	env.seedProfile(t, "intruder", "Intruder", false)

	keep := env.storage.put(photo("seller", "keep"))
	drop := env.storage.put(photo("seller", "drop"))
	product, err := env.listings.Create(ctx, "seller", listingInput("seller", "Salon complet", keep, drop))
	require.NoError(t, err)

	_, err = env.listings.Update(ctx, Actor{UserID: "intruder"}, product.ID, listingInput("seller", "Volé", keep))
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	updated, err := env.listings.Update(ctx, Actor{UserID: "seller"}, product.ID, listingInput("seller", "Salon complet", keep))
	require.NoError(t, err)
	assert.Equal(t, entity.ImageList{keep}, updated.Images)
	assert.True(t, env.storage.exists(keep))
	assert.False(t, env.storage.exists(drop))
}

func TestListingUseCase_DeleteCleansUp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	env.seedProfile(t, "buyer", "Buyer", false)
	product := env.seedProduct(t, "seller", "Réfrigérateur")

	_, err := env.favorites.Add(ctx, "buyer", product.ID)
	require.NoError(t, err)
	_, err = env.listings.Report(ctx, "buyer", product.ID, "arnaque", "")
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, "buyer", SendMessageInput{ProductID: product.ID, ReceiverID: "seller", Content: "Bonjour"})
	require.NoError(t, err)

	err = env.listings.Delete(ctx, Actor{UserID: "buyer"}, product.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	require.NoError(t, env.listings.Delete(ctx, Actor{UserID: "admin", IsAdmin: true}, product.ID))

	_, err = env.repos.Products.GetByID(ctx, product.ID)
	assert.True(t, errors.IsNotFound(err))
	exists, err := env.repos.Favorites.Exists(ctx, "buyer", product.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, env.storage.count())

	// The conversation outlives the listing.
	conversations, err := env.messages.ListConversations(ctx, "seller")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Nil(t, conversations[0].Product)
}

func TestListingUseCase_Report(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	env.seedProfile(t, "buyer", "Buyer", false)
	product := env.seedProduct(t, "seller", "Bijoux")

	report, err := env.listings.Report(ctx, "buyer", product.ID, "contrefaçon", "  Faux  ")
	require.NoError(t, err)
	assert.Equal(t, entity.ReportStatusOpen, report.Status)
	assert.Equal(t, "Faux", report.Details)

	_, err = env.listings.Report(ctx, "buyer", product.ID, "contrefaçon", "")
	assert.True(t, errors.Is(err, "CONFLICT"))

	_, err = env.listings.Report(ctx, "seller", product.ID, "test", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = env.listings.Report(ctx, "buyer", product.ID, " ", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestListingUseCase_PhotosMustBelongToOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "victim", "Victim", false)
	env.seedProfile(t, "attacker", "Attacker", false)
	victimListing := env.seedProduct(t, "victim", "Moto Yamaha")
	victimPhoto := victimListing.Images[0]
	avatar := env.storage.put(storedURL("avatars", "victim", "me.jpg"))

	for _, url := range []string{victimPhoto, avatar, "https://cdn.example.com/photo.jpg"} {
		_, err := env.listings.Create(ctx, "attacker", listingInput("attacker", "Leurre", url))
		assert.True(t, errors.Is(err, "BAD_REQUEST"), url)
	}

	own, err := env.listings.Create(ctx, "attacker", listingInput("attacker", "Leurre", env.storage.put(photo("attacker", "leurre"))))
	require.NoError(t, err)
	_, err = env.listings.Update(ctx, Actor{UserID: "attacker"}, own.ID, listingInput("attacker", "Leurre", victimPhoto))
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// An admin edit still only accepts the owner's photos.
	_, err = env.listings.Update(ctx, Actor{UserID: "admin", IsAdmin: true}, own.ID, listingInput("attacker", "Leurre", victimPhoto))
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	require.NoError(t, env.listings.Delete(ctx, Actor{UserID: "attacker"}, own.ID))
	assert.True(t, env.storage.exists(victimPhoto))
	assert.True(t, env.storage.exists(avatar))
}

func TestListingUseCase_DeleteSkipsForeignStoredPhotos(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "victim", "Victim", false)
	env.seedProfile(t, "attacker", "Attacker", false)
	victimPhoto := env.seedProduct(t, "victim", "Vélo").Images[0]

	// A row written before ownership checks existed.
	stale := env.seedProduct(t, "attacker", "Ancienne annonce")
	ownPhoto := stale.Images[0]
	stale.Images = entity.ImageList{ownPhoto, victimPhoto}
	require.NoError(t, env.repos.Products.Update(ctx, stale))

	require.NoError(t, env.listings.Delete(ctx, Actor{UserID: "attacker"}, stale.ID))
	assert.False(t, env.storage.exists(ownPhoto))
	assert.True(t, env.storage.exists(victimPhoto))
}
