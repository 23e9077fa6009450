package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"food-delivery/models"
)

// decrementAttempts bounds the retry loop when a decrement races with a
// concurrent cart update.
const decrementAttempts = 3

// MongoUserStore implements UserStore on the users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

// NewMongoUserStore creates a MongoUserStore.
func NewMongoUserStore(client *mongo.Client) *MongoUserStore {
	return &MongoUserStore{coll: client.Database(DatabaseName).Collection("users")}
}

// EnsureIndexes creates the unique email index.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	if user.CartData == nil {
		user.CartData = models.NewCartData()
	}
	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, models.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// IncrementCartItem is a single atomic $inc on the user document, so two
// concurrent adds for the same user both land.
func (s *MongoUserStore) IncrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"cartData." + foodID: 1}},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if user.CartData == nil {
		user.CartData = models.NewCartData()
	}
	return user.CartData, nil
}

// DecrementCartItem uses two condition-guarded writes: a $inc while the
// quantity is above one, and a $unset when it is exactly one. Each write only
// applies when its guard still holds, so a concurrent increment is never
// overwritten. If both guards miss because of a race, the loop retries.
func (s *MongoUserStore) DecrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error) {
	key := "cartData." + foodID
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < decrementAttempts; attempt++ {
		var user models.User
		err := s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": userID, key: bson.M{"$gt": 1}},
			bson.M{"$inc": bson.M{key: -1}},
			opts,
		).Decode(&user)
		if err == nil {
			return user.CartData, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		// Quantity exactly one: drop the entry instead of storing zero.
		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": userID, key: 1},
			bson.M{"$unset": bson.M{key: ""}},
			opts,
		).Decode(&user)
		if err == nil {
			if user.CartData == nil {
				user.CartData = models.NewCartData()
			}
			return user.CartData, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		// Neither guard matched: the user is gone, the entry is absent, or a
		// concurrent update moved the quantity between the two writes.
		var current models.User
		if err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrNotFound
			}
			return nil, err
		}
		if _, ok := current.CartData[foodID]; !ok {
			return nil, fmt.Errorf("%w: item %s not in cart", models.ErrNotFound, foodID)
		}
	}
	return nil, fmt.Errorf("cart decrement for item %s did not settle after %d attempts", foodID, decrementAttempts)
}

func (s *MongoUserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cartData": bson.M{}}},
	)
	return err
}
