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

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		doc := r.client.Collection("products").NewDoc()
		product.ID = doc.ID
	}

	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection("products").Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}

	product, err := decodeProduct(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}

	return product, nil
}

// productDoc reads the images field loosely so older documents that stored
// it as a string still load.
type productDoc struct {
	entity.Product
	Images interface{} `firestore:"images"`
}

func decodeProduct(doc *firestore.DocumentSnapshot) (*entity.Product, error) {
	var d productDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	product := d.Product
	product.Images = entity.ImageListFromValue(d.Images)
	return &product, nil
}

func (r *firestoreProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product)

	for _, batch := range chunkIDs(uniqueIDs(ids), firestoreBatchSize) {
		refs := make([]*firestore.DocumentRef, len(batch))
		for i, id := range batch {
			refs[i] = r.client.Collection("products").Doc(id)
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errors.Internal("Failed to get products", err)
		}

		for _, doc := range docs {
			if doc == nil || !doc.Exists() {
				continue
			}
			product, err := decodeProduct(doc)
			if err != nil {
				logger.Warn("Skipping unreadable product %s: %v", doc.Ref.ID, err)
				continue
			}
			products[doc.Ref.ID] = product
		}
	}

	return products, nil
}

// List applies equality filters in the query and price or title filters in
// memory, since Firestore has no substring search.
func (r *firestoreProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.client.Collection("products").Query

	if filter.CategoryID != "" {
		query = query.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.SubCategory != "" {
		query = query.Where("subCategory", "==", filter.SubCategory)
	}
	if filter.Island != "" {
		query = query.Where("locationIsland", "==", filter.Island)
	}
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list products", err)
	}

	needle := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]*entity.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := decodeProduct(doc)
		if err != nil {
			logger.Warn("Skipping unreadable product %s: %v", doc.Ref.ID, err)
			continue
		}
		if filter.MinPrice > 0 && product.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && product.Price > filter.MaxPrice {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(product.Title), needle) {
			continue
		}
		matched = append(matched, product)
	}

	return pageOf(matched, limit, offset), int64(len(matched)), nil
}

func (r *firestoreProductRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := countQuery(ctx, r.client.Collection("products").Where("userId", "==", userID))
	if err != nil {
		return 0, errors.Internal("Failed to count products", err)
	}
	return count, nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Internal("Failed to update product", err)
	}

	return nil
}

func (r *firestoreProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("products").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete product", err)
	}

	return nil
}
