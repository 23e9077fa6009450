package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-delivery/middleware"
	"food-delivery/models"
	"food-delivery/utils"
)

// fakeUserStore keeps users in memory. Cart mutations run under a mutex, so
// they are atomic per store exactly like the Mongo operations they stand for.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (s *fakeUserStore) addUser(user *models.User) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CartData == nil {
		user.CartData = models.NewCartData()
	}
	s.users[user.ID] = user
	return user.ID
}

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	copied.CartData = user.CartData.Clone()
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			copied.CartData = user.CartData.Clone()
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, models.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	if user.CartData == nil {
		user.CartData = models.NewCartData()
	}
	s.users[user.ID] = user
	return user.ID, nil
}

func (s *fakeUserStore) IncrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	user.CartData.Add(foodID)
	return user.CartData.Clone(), nil
}

func (s *fakeUserStore) DecrementCartItem(ctx context.Context, userID primitive.ObjectID, foodID string) (models.CartData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := user.CartData.Remove(foodID); err != nil {
		return nil, err
	}
	return user.CartData.Clone(), nil
}

func (s *fakeUserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.CartData = models.NewCartData()
	return nil
}

// fakeFoodStore keeps catalog items in memory.
type fakeFoodStore struct {
	mu    sync.Mutex
	foods map[primitive.ObjectID]models.Food
}

func newFakeFoodStore() *fakeFoodStore {
	return &fakeFoodStore{foods: map[primitive.ObjectID]models.Food{}}
}

func (s *fakeFoodStore) addFood(food models.Food) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if food.ID.IsZero() {
		food.ID = primitive.NewObjectID()
	}
	s.foods[food.ID] = food
	return food.ID
}

func (s *fakeFoodStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	food, ok := s.foods[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &food, nil
}

func (s *fakeFoodStore) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []models.Food{}
	for _, id := range ids {
		if food, ok := s.foods[id]; ok {
			found = append(found, food)
		}
	}
	return found, nil
}

func (s *fakeFoodStore) FindAll(ctx context.Context) ([]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Food{}
	for _, food := range s.foods {
		all = append(all, food)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (s *fakeFoodStore) Create(ctx context.Context, food *models.Food) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	food.ID = primitive.NewObjectID()
	s.foods[food.ID] = *food
	return food.ID, nil
}

func (s *fakeFoodStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.foods[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.foods, id)
	return nil
}

// fakeOrderStore keeps orders in memory in insertion order.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
	ids    []primitive.ObjectID
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (s *fakeOrderStore) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = primitive.NewObjectID()
	s.orders[order.ID] = order
	s.ids = append(s.ids, order.ID)
	return order.ID, nil
}

func (s *fakeOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[id]; ok {
		order.Payment = true
	}
	return nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (s *fakeOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *fakeOrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []models.Order{}
	for _, id := range s.ids {
		if order, ok := s.orders[id]; ok && order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *fakeOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []models.Order{}
	for _, id := range s.ids {
		if order, ok := s.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// fakeCheckout records the last requested payment session.
type fakeCheckout struct {
	mu         sync.Mutex
	lines      []utils.CheckoutLine
	successURL string
	cancelURL  string
	url        string
	err        error
}

func (c *fakeCheckout) CreateCheckoutSession(lines []utils.CheckoutLine, successURL, cancelURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = lines
	c.successURL = successURL
	c.cancelURL = cancelURL
	if c.err != nil {
		return "", c.err
	}
	return c.url, nil
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return httptest.NewRequest(method, target, &buf)
}

// authedRequest builds a request carrying the claims the auth middleware
// would have attached.
func authedRequest(t *testing.T, method, target string, body interface{}, userID primitive.ObjectID, role string) *http.Request {
	t.Helper()
	r := jsonRequest(t, method, target, body)
	claims := &utils.Claims{
		UserID: userID.Hex(),
		Email:  fmt.Sprintf("%s@example.com", userID.Hex()[:8]),
		Role:   role,
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, claims))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}
