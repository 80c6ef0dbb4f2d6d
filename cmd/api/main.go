package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tejgit8102/expensemate-backend/internal/config"
	"github.com/tejgit8102/expensemate-backend/internal/database"
	"github.com/tejgit8102/expensemate-backend/internal/handlers"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
	"github.com/tejgit8102/expensemate-backend/internal/middleware"
	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/validator"

	_ "github.com/tejgit8102/expensemate-backend/internal/docs" // Import swagger docs
)

// @title           ExpenseMate API
// @version         1.0
// @description     ExpenseMate is a personal finance backend for tracking expenses, monthly budgets, spending insights, notifications, and downloadable reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	mailer := services.NewSMTPMailer(appConfig)
	notificationService := services.NewNotificationService(db)
	expenseService := services.NewExpenseService(db, notificationService)
	budgetService := services.NewBudgetService(db, expenseService, notificationService)
	insightService := services.NewInsightService(db)
	reportService := services.NewReportService(db, expenseService, notificationService)
	userService := services.NewUserService(db, mailer)
	adminService := services.NewAdminService(db, notificationService)

	// Seed the admin account
	if err := userService.EnsureAdmin(appConfig.AdminUsername, appConfig.AdminEmail, appConfig.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	insightHandler := handlers.NewInsightHandler(insightService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	user := protected.Group("/user")
	user.GET("/profile", userHandler.GetProfile)
	user.PUT("/profile", userHandler.UpdateProfile)
	user.PUT("/change-password", userHandler.ChangePassword)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.AddExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.GET("/total/:month/:year", expenseHandler.GetMonthlyTotal)
	expenses.GET("/categories/:month/:year", expenseHandler.GetCategoryTotals)

	// Budget routes
	budget := protected.Group("/budget")
	budget.POST("", budgetHandler.SetBudget)
	budget.PUT("", budgetHandler.UpdateBudget)
	budget.GET("", budgetHandler.GetBudgetStatus)

	// Insight routes
	insights := protected.Group("/insights")
	insights.GET("", insightHandler.GetInsights)
	insights.GET("/export-pdf", insightHandler.ExportInsightsPDF)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/monthly", reportHandler.MonthlyReport)
	reports.GET("/annual", reportHandler.AnnualReport)
	reports.GET("/export/pdf", reportHandler.ExportPDF)
	reports.GET("/export/excel", reportHandler.ExportExcel)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/activate", adminHandler.ActivateUser)
	admin.PUT("/users/:id/deactivate", adminHandler.DeactivateUser)
	admin.PUT("/users/:id/reset-password", adminHandler.ResetUserPassword)
	admin.GET("/expenses", adminHandler.AllExpenses)
	admin.GET("/expenses/flagged", adminHandler.FlaggedExpenses)
	admin.PUT("/expenses/:id/flag", adminHandler.FlagExpense)
	admin.PUT("/expenses/:id/unflag", adminHandler.UnflagExpense)
	admin.DELETE("/expenses/:id", adminHandler.DeleteExpense)
	admin.GET("/budgets/summary", adminHandler.BudgetSummary)
	admin.GET("/reports/system", adminHandler.SystemReport)
	admin.POST("/notifications", adminHandler.Broadcast)

	log.Infof("Starting ExpenseMate backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
