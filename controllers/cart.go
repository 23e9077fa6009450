package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-delivery/middleware"
	"food-delivery/models"
	"food-delivery/store"
	"food-delivery/utils"
)

// CartController handles cart-related requests. The cart is a quantity map on
// the user document; every mutation goes through the store's atomic
// increment/decrement operations.
type CartController struct {
	Users     store.UserStore
	Foods     store.FoodStore
	PublicURL string
}

// NewCartController creates a new CartController.
func NewCartController(users store.UserStore, foods store.FoodStore, publicURL string) *CartController {
	return &CartController{
		Users:     users,
		Foods:     foods,
		PublicURL: publicURL,
	}
}

// CartItemView is one expanded cart entry joined with the catalog.
type CartItemView struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// authUserID resolves the acting user's id from the request context.
func authUserID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// AddToCart adds one unit of a food item to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		FoodID string `json:"foodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid foodId")
		return
	}
	foodID, err := primitive.ObjectIDFromHex(req.FoodID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid foodId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := cc.Foods.FindByID(ctx, foodID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Food not found")
			return
		}
		log.Printf("Error looking up food %s: %v", req.FoodID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	cart, err := cc.Users.IncrementCartItem(ctx, userID, req.FoodID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error adding to cart: %v", err)
		utils.WriteError(w, utils.ErrorStatus(err), "Server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item added to cart",
		"cart":    cart,
	})
}

// RemoveFromCart removes one unit of a food item from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		FoodID string `json:"foodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid foodId")
		return
	}
	if _, err := primitive.ObjectIDFromHex(req.FoodID); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid foodId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Users.DecrementCartItem(ctx, userID, req.FoodID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Item not in cart")
			return
		}
		log.Printf("Error removing from cart: %v", err)
		utils.WriteError(w, utils.ErrorStatus(err), "Server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

// GetCart retrieves the raw quantity map plus an expanded view joined with
// the catalog. Entries whose food item no longer exists expand to null; the
// map itself is not pruned on read.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := cc.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error loading user: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	cart := user.CartData
	if cart == nil {
		cart = models.NewCartData()
	}

	keys := make([]string, 0, len(cart))
	ids := make([]primitive.ObjectID, 0, len(cart))
	for key := range cart {
		keys = append(keys, key)
		if id, err := primitive.ObjectIDFromHex(key); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(keys)

	foods, err := cc.Foods.FindManyByIDs(ctx, ids)
	if err != nil {
		log.Printf("Error expanding cart: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}
	byID := make(map[string]models.Food, len(foods))
	for _, food := range foods {
		byID[food.ID.Hex()] = food
	}

	items := make([]*CartItemView, 0, len(keys))
	for _, key := range keys {
		food, found := byID[key]
		if !found {
			items = append(items, nil)
			continue
		}
		items = append(items, &CartItemView{
			ID:       key,
			Name:     food.Name,
			Price:    food.Price,
			Category: food.Category,
			Image:    cc.PublicURL + "/image/" + food.Image,
			Quantity: cart[key],
		})
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
		"items":   items,
	})
}
