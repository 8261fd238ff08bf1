package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"jamb/database"
	"jamb/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo keeps categories and services in two collections.
type MongoCatalogRepo struct {
	categories *mongo.Collection
	services   *mongo.Collection
}

// NewMongoCatalogRepo creates a CatalogRepository backed by MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	repo := &MongoCatalogRepo{
		categories: database.Collection("categories"),
		services:   database.Collection("services"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.categories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "section", Value: 1}, {Key: "sortOrder", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}
	if _, err := r.services.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "section", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	return nil
}

// withoutEmbedding keeps embedding vectors out of ordinary reads.
var withoutEmbedding = bson.M{"embedding": 0, "_id": 0}

func (r *MongoCatalogRepo) ListCategories(section models.Section) ([]models.Category, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{}
	if section != "" {
		filter["section"] = section
	}
	opts := options.Find().SetSort(bson.D{{Key: "section", Value: 1}, {Key: "sortOrder", Value: 1}, {Key: "title", Value: 1}})
	cursor, err := r.categories.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// serviceFilter translates a ServiceFilter into a Mongo query. Query matches title,
// description and tags case-insensitively.
func serviceFilter(f models.ServiceFilter) bson.M {
	filter := bson.M{}
	if f.Section != "" {
		filter["section"] = f.Section
	}
	if f.CategoryID != "" {
		filter["categoryId"] = f.CategoryID
	}
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
			bson.M{"id": f.Query},
		}
	}
	return filter
}

func containsPattern(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

func (r *MongoCatalogRepo) ListServices(f models.ServiceFilter) ([]models.Service, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutEmbedding).
		SetSort(bson.D{{Key: "id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}

	cursor, err := r.services.Find(ctx, serviceFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *MongoCatalogRepo) ListAllServices() ([]models.Service, error) {
	ctx, cancel := newContext(15 * time.Second)
	defer cancel()

	cursor, err := r.services.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *MongoCatalogRepo) GetService(id string) (*models.Service, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var service models.Service
	opts := options.FindOne().SetProjection(withoutEmbedding)
	if err := r.services.FindOne(ctx, bson.M{"id": id}, opts).Decode(&service); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &service, nil
}

func (r *MongoCatalogRepo) GetServices(ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetProjection(withoutEmbedding)
	cursor, err := r.services.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *MongoCatalogRepo) UpsertCategory(category *models.Category) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	category.UpdatedAt = time.Now()
	opts := options.Update().SetUpsert(true)
	if _, err := r.categories.UpdateOne(ctx, bson.M{"id": category.ID}, bson.M{"$set": category}, opts); err != nil {
		return fmt.Errorf("failed to upsert category %s: %w", category.ID, err)
	}
	return nil
}

// UpsertService stores a service. An existing embedding is dropped because the text it
// was computed from may have changed.
func (r *MongoCatalogRepo) UpsertService(service *models.Service) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	service.UpdatedAt = now
	service.Embedding = nil

	update := bson.M{
		"$set": bson.M{
			"categoryId":        service.CategoryID,
			"section":           service.Section,
			"title":             service.Title,
			"description":       service.Description,
			"unitOfMeasurement": service.UnitOfMeasurement,
			"price":             service.Price,
			"minQuantity":       service.MinQuantity,
			"maxQuantity":       service.MaxQuantity,
			"imageUrl":          service.ImageURL,
			"tags":              service.Tags,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{"id": service.ID, "createdAt": now},
		"$unset":       bson.M{"embedding": ""},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.services.UpdateOne(ctx, bson.M{"id": service.ID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert service %s: %w", service.ID, err)
	}
	return nil
}

func (r *MongoCatalogRepo) SetEmbedding(id string, embedding []float32) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.services.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"embedding": embedding}})
	if err != nil {
		return fmt.Errorf("failed to store embedding for %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrServiceNotFound
	}
	return nil
}
