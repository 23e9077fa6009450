package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-delivery/models"
	"food-delivery/store"
	"food-delivery/utils"
)

// FoodController handles catalog requests.
type FoodController struct {
	Foods     store.FoodStore
	UploadDir string
}

// NewFoodController creates a new FoodController. Uploaded images are stored
// under uploadDir and served from the /image/ path.
func NewFoodController(foods store.FoodStore, uploadDir string) *FoodController {
	return &FoodController{
		Foods:     foods,
		UploadDir: uploadDir,
	}
}

// AddFood handles adding a new food item with its image (Admin only)
func (fc *FoodController) AddFood(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	description := r.FormValue("description")
	category := r.FormValue("category")
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid price")
		return
	}
	if name == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := os.MkdirAll(fc.UploadDir, os.ModePerm); err != nil {
		log.Printf("Error creating upload directory: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	filename := fmt.Sprintf("%s%s", primitive.NewObjectID().Hex(), filepath.Ext(handler.Filename))
	dst, err := os.Create(filepath.Join(fc.UploadDir, filename))
	if err != nil {
		log.Printf("Error creating image file: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Error saving image file: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	food := &models.Food{
		Name:        name,
		Description: description,
		Price:       price,
		Image:       filename,
		Category:    category,
		CreatedAt:   time.Now(),
	}
	id, err := fc.Foods.Create(ctx, food)
	if err != nil {
		log.Printf("Error creating food item: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add food item")
		return
	}
	food.ID = id

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Food item added successfully",
		"data":    food,
	})
}

// ListFood retrieves all food items, newest first
func (fc *FoodController) ListFood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	foods, err := fc.Foods.FindAll(ctx)
	if err != nil {
		log.Printf("Error fetching food list: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch food list")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    foods,
	})
}

// RemoveFood deletes a food item and its stored image (Admin only)
func (fc *FoodController) RemoveFood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid food ID")
		return
	}
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid food ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	food, err := fc.Foods.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Food not found")
			return
		}
		log.Printf("Error looking up food %s: %v", req.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := fc.Foods.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Food not found")
			return
		}
		log.Printf("Error deleting food %s: %v", req.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Best effort; a stale image on disk is harmless.
	if food.Image != "" {
		if err := os.Remove(filepath.Join(fc.UploadDir, food.Image)); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing image for food %s: %v", req.ID, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Food removed",
	})
}
