package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"food-delivery/models"
)

// MongoFoodStore implements FoodStore on the foods collection.
type MongoFoodStore struct {
	coll *mongo.Collection
}

// NewMongoFoodStore creates a MongoFoodStore.
func NewMongoFoodStore(client *mongo.Client) *MongoFoodStore {
	return &MongoFoodStore{coll: client.Database(DatabaseName).Collection("foods")}
}

func (s *MongoFoodStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Food, error) {
	var food models.Food
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &food, nil
}

func (s *MongoFoodStore) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Food, error) {
	if len(ids) == 0 {
		return []models.Food{}, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	foods := []models.Food{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (s *MongoFoodStore) FindAll(ctx context.Context) ([]models.Food, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	foods := []models.Food{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (s *MongoFoodStore) Create(ctx context.Context, food *models.Food) (primitive.ObjectID, error) {
	result, err := s.coll.InsertOne(ctx, food)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (s *MongoFoodStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
