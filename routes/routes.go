package routes

import (
	"github.com/gorilla/mux"

	"food-delivery/controllers"
	"food-delivery/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, foodController *controllers.FoodController, cartController *controllers.CartController, orderController *controllers.OrderController) {
	// Public routes
	router.HandleFunc("/api/user/register", userController.Register).Methods("POST")
	router.HandleFunc("/api/user/login", userController.Login).Methods("POST")
	router.HandleFunc("/api/food/list", foodController.ListFood).Methods("GET")
	// Payment callback arrives without a session.
	router.HandleFunc("/api/order/verify", orderController.VerifyOrder).Methods("POST")

	// Authenticated routes
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(middleware.AuthMiddleware)
	authed.HandleFunc("/cart/add", cartController.AddToCart).Methods("POST")
	authed.HandleFunc("/cart/remove", cartController.RemoveFromCart).Methods("POST")
	authed.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	authed.HandleFunc("/order/place", orderController.PlaceOrder).Methods("POST")
	authed.HandleFunc("/order/userorders", orderController.UserOrders).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/api").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/food/add", foodController.AddFood).Methods("POST")
	admin.HandleFunc("/food/remove", foodController.RemoveFood).Methods("POST")
	admin.HandleFunc("/order/list", orderController.ListOrders).Methods("GET")
	admin.HandleFunc("/order/status", orderController.UpdateStatus).Methods("POST")
}
