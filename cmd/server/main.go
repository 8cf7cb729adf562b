package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"medimart_api/internal/handlers"
	"medimart_api/internal/middleware"
	"medimart_api/internal/reconcile"
	"medimart_api/internal/services"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	razorpaySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if razorpaySecret == "" {
		log.Fatal("RAZORPAY_KEY_SECRET is required")
	}

	db, err := services.InitDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := services.SeedDefaults(db); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	// Redis is optional; the dashboard falls back to direct queries
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Redis unavailable, caching disabled: %v", err)
			cache = nil
		}
	}

	tokens := services.NewTokenService(jwtSecret, 24*time.Hour)
	mailer := services.NewEmailService()
	gateway := services.NewRazorpayService()

	resolver := reconcile.NewResolver(db)
	engine := reconcile.NewEngine(db, gateway, razorpaySecret)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewCustomValidator()
	e.HTTPErrorHandler = middleware.CustomErrorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	authHandler := handlers.NewAuthHandler(db, tokens, mailer)
	addressHandler := handlers.NewAddressHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	clinicHandler := handlers.NewClinicHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	planHandler := handlers.NewPlanHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, engine, resolver)
	orderHandler := handlers.NewOrderHandler(db, engine, resolver)
	permissionHandler := handlers.NewPermissionHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db, cache)

	api := e.Group("/api")
	requireAuth := middleware.RequireAuth(tokens)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/change-password", authHandler.ChangePassword)
	auth.GET("/me", authHandler.Me, requireAuth)

	address := api.Group("/address", requireAuth)
	address.POST("", addressHandler.CreateAddress)
	address.GET("", addressHandler.ListAddresses)
	address.PUT("/:id", addressHandler.UpdateAddress)
	address.DELETE("/:id", addressHandler.DeleteAddress)

	doctor := api.Group("/doctor")
	doctor.GET("", doctorHandler.ListDoctors)
	doctor.GET("/:id", doctorHandler.GetDoctor)
	doctor.GET("/:id/availability", doctorHandler.GetAvailability)
	doctor.POST("", doctorHandler.CreateProfile, requireAuth)
	doctor.PUT("", doctorHandler.UpdateProfile, requireAuth)

	clinic := api.Group("/clinic")
	clinic.GET("", clinicHandler.ListClinics)
	clinic.GET("/:id", clinicHandler.GetClinic)
	clinic.POST("", clinicHandler.CreateProfile, requireAuth)
	clinic.PUT("", clinicHandler.UpdateProfile, requireAuth)
	clinic.DELETE("/:id", clinicHandler.DeleteClinic, requireAuth, middleware.RequireAdmin)

	category := api.Group("/category")
	category.GET("", catalogHandler.ListCategories)
	category.POST("", catalogHandler.CreateCategory, requireAuth, middleware.RequireAdmin)
	category.DELETE("/:id", catalogHandler.DeleteCategory, requireAuth, middleware.RequireAdmin)
	category.POST("/sub", catalogHandler.CreateSubCategory, requireAuth, middleware.RequireAdmin)
	category.DELETE("/sub/:id", catalogHandler.DeleteSubCategory, requireAuth, middleware.RequireAdmin)
	category.POST("/sub-sub", catalogHandler.CreateSubSubCategory, requireAuth, middleware.RequireAdmin)
	category.DELETE("/sub-sub/:id", catalogHandler.DeleteSubSubCategory, requireAuth, middleware.RequireAdmin)

	product := api.Group("/product")
	product.GET("", catalogHandler.ListProducts)
	product.GET("/:id", catalogHandler.GetProduct)
	product.POST("", catalogHandler.CreateProduct, requireAuth, middleware.RequireAdmin)
	product.PUT("/:id", catalogHandler.UpdateProduct, requireAuth, middleware.RequireAdmin)
	product.DELETE("/:id", catalogHandler.DeleteProduct, requireAuth, middleware.RequireAdmin)

	plan := api.Group("/plan")
	plan.GET("", planHandler.ListPlans)
	plan.GET("/:id", planHandler.GetPlan)
	plan.POST("", planHandler.CreatePlan, requireAuth, middleware.RequireAdmin)

	appointment := api.Group("/appointment", requireAuth)
	appointment.POST("", appointmentHandler.CreateAppointment)
	appointment.POST("/verify", appointmentHandler.VerifyAppointment)
	appointment.GET("", appointmentHandler.ListAppointments)
	appointment.GET("/:id", appointmentHandler.GetAppointment)
	appointment.PUT("/:id", appointmentHandler.UpdateAppointment)
	appointment.DELETE("/:id", appointmentHandler.DeleteAppointment)

	order := api.Group("/order", requireAuth)
	order.POST("", orderHandler.CreateOrder)
	order.POST("/verify", orderHandler.VerifyOrder)
	order.GET("", orderHandler.ListOrders)
	order.GET("/:id", orderHandler.GetOrder)
	order.DELETE("/:id", orderHandler.DeleteOrder)

	permission := api.Group("/permission", requireAuth, middleware.RequireAdmin)
	permission.POST("/category", permissionHandler.CreatePermissionCategory)
	permission.GET("/category", permissionHandler.ListPermissionCategories)
	permission.POST("", permissionHandler.CreatePermission)
	permission.GET("", permissionHandler.ListPermissions)
	permission.POST("/user", permissionHandler.AssignUserPermission)
	permission.DELETE("/user", permissionHandler.RevokeUserPermission)
	permission.GET("/user", permissionHandler.ListUserPermissions)

	group := api.Group("/group", requireAuth, middleware.RequireAdmin)
	group.POST("", permissionHandler.CreateGroup)
	group.GET("", permissionHandler.ListGroups)
	group.DELETE("/:id", permissionHandler.DeleteGroup)
	group.POST("/permission", permissionHandler.AssignGroupPermission)
	group.DELETE("/permission", permissionHandler.RevokeGroupPermission)
	group.POST("/user", permissionHandler.AssignUserGroup)
	group.DELETE("/user", permissionHandler.RevokeUserGroup)

	dashboard := api.Group("/dashboard", requireAuth, middleware.RequireAdmin)
	dashboard.GET("/stats", dashboardHandler.GetStats)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Fatal(e.Start(":" + port))
}
