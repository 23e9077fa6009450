package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-delivery/models"
)

// UserStore holds identity records. Cart mutations are atomic per user
// record so that concurrent add/remove requests for the same user never lose
// an update.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)

	// IncrementCartItem adds one to the quantity for foodID, creating the
	// entry at 1, and returns the updated cart.
	IncrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error)
	// DecrementCartItem subtracts one from the quantity for foodID, deleting
	// the entry when it reaches zero. Decrementing an absent entry returns
	// models.ErrNotFound.
	DecrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error)
	// ClearCart resets the user's cart to empty.
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

// FoodStore holds the catalog.
type FoodStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Food, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Food, error)
	// FindAll returns the catalog sorted by creation time, newest first.
	FindAll(ctx context.Context) ([]models.Food, error)
	Create(ctx context.Context, food *models.Food) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderStore holds order records. MarkPaid, UpdateStatus and Delete are
// no-ops for a missing order id; the payment callback path relies on that.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
}
