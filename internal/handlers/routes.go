package handlers

import (
	"github.com/gin-gonic/gin"

	"repairhub/internal/auth"
	"repairhub/internal/middleware"
	"repairhub/internal/payment"
	"repairhub/internal/service"
	"repairhub/internal/store"
)

// Deps is everything the API routes need.
type Deps struct {
	Users       store.UserStore
	Addresses   store.AddressStore
	Agents      store.AgentStore
	Technicians store.TechnicianStore
	Products    store.ProductStore
	Revoked     store.TokenStore
	Orders      *service.OrderService
	Tokens      *auth.TokenService
	Google      auth.GoogleVerifier
	Mailer      AccountMailer
	Gateway     payment.Gateway
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(r gin.IRouter, d Deps) {
	authed := middleware.Auth(d.Tokens)
	admin := middleware.RequireAdmin()

	api := r.Group("/api")

	address := api.Group("/address")
	{
		address.GET("", authed, GetAddresses(d.Addresses))
		address.POST("", authed, admin, CreateAddress(d.Addresses))
		address.PUT("/:id", authed, admin, UpdateAddress(d.Addresses))
		address.DELETE("/:id", authed, admin, DeleteAddress(d.Addresses))
	}

	agents := api.Group("/agents")
	agents.Use(authed, admin)
	{
		agents.GET("", ListAgents(d.Agents))
		agents.GET("/:id", GetAgent(d.Agents))
		agents.POST("", CreateAgent(d.Agents))
		agents.PUT("/:id", UpdateAgent(d.Agents))
		agents.DELETE("/:id", DeleteAgent(d.Agents))
	}

	technicians := api.Group("/technicians")
	technicians.Use(authed)
	{
		technicians.GET("", ListTechnicians(d.Technicians))
		technicians.GET("/:id", GetTechnician(d.Technicians))
		technicians.POST("", admin, CreateTechnician(d.Technicians, d.Agents))
		technicians.PUT("/:id", admin, UpdateTechnician(d.Technicians, d.Agents))
		technicians.DELETE("/:id", admin, DeleteTechnician(d.Technicians))
	}

	products := api.Group("/products")
	products.Use(authed)
	{
		products.GET("", ListProducts(d.Products))
		products.GET("/brands/:id", ListBrands(d.Products))
		products.GET("/models/:id/:brandId", ListModels(d.Products))
		products.POST("", admin, CreateProduct(d.Products))
		products.PATCH("/addBrands/:id", admin, AddBrand(d.Products))
		products.PATCH("/addModels/:id/:brandId", admin, AddModel(d.Products))
	}

	users := api.Group("/users")
	{
		users.POST("", RegisterUser(d.Users, d.Tokens, d.Mailer))
		users.POST("/google", GoogleLogin(d.Users, d.Tokens, d.Google))
		users.GET("/authentication/:token", VerifyEmail(d.Users, d.Tokens))

		me := users.Group("/me", authed)
		me.GET("", GetMe(d.Users))
		me.PUT("", UpdateMe(d.Users))
		me.PATCH("/pushToken", UpdatePushToken(d.Users))
		me.GET("/addresses", GetMyAddresses(d.Users))
		me.POST("/addresses", AddMyAddress(d.Users))
		me.PUT("/addresses/:addressId", UpdateMyAddress(d.Users))
		me.DELETE("/addresses/:addressId", DeleteMyAddress(d.Users))
		me.PATCH("/defaultAddress/:addressId", SetDefaultAddress(d.Users))
		me.GET("/notifications", GetMyNotifications(d.Users))
		me.GET("/orders", GetMyOrders(d.Orders))
	}

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("", Login(d.Users, d.Tokens, d.Mailer))
		authRoutes.POST("/newToken", NewToken(d.Users, d.Revoked, d.Tokens))
		authRoutes.POST("/logout", Logout(d.Revoked, d.Tokens))
		authRoutes.POST("/forgot-password", ForgotPassword(d.Users, d.Tokens, d.Mailer))
		authRoutes.GET("/reset-password/:token", ResetPasswordForm(d.Tokens))
		authRoutes.POST("/reset-password/:token", ResetPassword(d.Users, d.Tokens))
	}

	reports := d.Orders.Reports()
	orders := api.Group("/orders")
	orders.Use(authed)
	{
		orders.GET("", admin, ListOrders(d.Orders))
		orders.GET("/totalProfit", admin, TotalProfit(reports))
		orders.GET("/weeklySells", admin, WeeklySells(reports))
		orders.GET("/sellsInMonth", admin, SellsInMonth(reports))
		orders.GET("/pendingOrder", admin, PendingOrders(reports))
		orders.GET("/countOrderCategory", admin, CountOrderCategory(reports))
		orders.GET("/:id", GetOrder(d.Orders))
		orders.POST("", CreateOrder(d.Orders))
		orders.PATCH("/accept/:orderId", admin, AcceptOrder(d.Orders))
		orders.PATCH("/assigned/:orderId", admin, AssignOrder(d.Orders))
		orders.PATCH("/repaired/:orderId", admin, RepairedOrder(d.Orders))
	}

	payments := api.Group("/payments")
	{
		payments.POST("/paymentSuccess", PaymentSuccess(d.Orders, d.Gateway))
		payments.POST("/paymentFail", PaymentFail())
		payments.POST("/paymentCancel", PaymentCancel())
		payments.GET("/:orderId", authed, InitPayment(d.Users, d.Orders, d.Gateway))
	}

	r.GET("/test", Test())
}
