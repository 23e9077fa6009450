package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"food-delivery/models"
)

// MongoOrderStore implements OrderStore on the orders collection.
type MongoOrderStore struct {
	coll *mongo.Collection
}

// NewMongoOrderStore creates a MongoOrderStore.
func NewMongoOrderStore(client *mongo.Client) *MongoOrderStore {
	return &MongoOrderStore{coll: client.Database(DatabaseName).Collection("orders")}
}

func (s *MongoOrderStore) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	result, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips the payment flag. There is no transition out of paid, and a
// missing order id is a no-op, matching the callback-driven confirmation path.
func (s *MongoOrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"payment": true}})
	return err
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	return err
}

func (s *MongoOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoOrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"userId": userID})
}

func (s *MongoOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{})
}

func (s *MongoOrderStore) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
