package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"food-delivery/controllers"
	"food-delivery/routes"
	"food-delivery/store"
	"food-delivery/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		utils.JwtKey = []byte(secret)
	}

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Initialize stores
	userStore := store.NewMongoUserStore(client)
	foodStore := store.NewMongoFoodStore(client)
	orderStore := store.NewMongoOrderStore(client)
	if err := userStore.EnsureIndexes(context.TODO()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// External collaborators
	emailService := utils.NewEmailService()
	var checkout utils.CheckoutCreator
	if sc := utils.NewStripeCheckout(); sc != nil {
		checkout = sc
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = "http://localhost:" + port
	}
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	strictAmount := os.Getenv("STRICT_AMOUNT_CHECK") == "true"

	uploadDir := "uploads"
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Initialize controllers
	userController := controllers.NewUserController(userStore, emailService)
	foodController := controllers.NewFoodController(foodStore, uploadDir)
	cartController := controllers.NewCartController(userStore, foodStore, publicURL)
	orderController := controllers.NewOrderController(orderStore, userStore, checkout, emailService, frontendURL, strictAmount)

	// Set up the router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "API working")
	}).Methods("GET")
	router.PathPrefix("/image/").Handler(http.StripPrefix("/image/", http.FileServer(http.Dir(uploadDir))))

	// Register routes
	routes.RegisterRoutes(router, userController, foodController, cartController, orderController)

	// CORS whitelist for the browser frontends
	origins := []string{"http://localhost:5173", "http://localhost:5174"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(router)

	// Start the server
	log.Printf("Server started on http://localhost:%s", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
