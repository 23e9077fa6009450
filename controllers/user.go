package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"food-delivery/models"
	"food-delivery/store"
	"food-delivery/utils"
)

// UserController handles registration and login.
type UserController struct {
	Users        store.UserStore
	EmailService *utils.EmailService
}

// NewUserController creates a new UserController.
func NewUserController(users store.UserStore, emailService *utils.EmailService) *UserController {
	return &UserController{
		Users:        users,
		EmailService: emailService,
	}
}

// blockedGmailDomain rejects "gmail.*" typo domains such as gmail.con.
func blockedGmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	return strings.HasPrefix(domain, "gmail.") && domain != "gmail.com"
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	return !blockedGmailDomain(email)
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if len(req.Password) < 8 {
		utils.WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := uc.Users.FindByEmail(ctx, email); err == nil {
		utils.WriteError(w, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		log.Printf("Register lookup error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		CartData: models.NewCartData(),
	}
	id, err := uc.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			utils.WriteError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("Error creating user: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token, err := utils.GenerateJWT(id.Hex(), email, user.Role)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	go func(toEmail, name string) {
		if err := uc.EmailService.SendWelcomeEmail(toEmail, name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", toEmail, err)
		}
	}(email, req.Name)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "User does not exist")
			return
		}
		log.Printf("Login lookup error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}
