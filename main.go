package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/client"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/config"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/handler"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set")
	}

	// Initialize generation backend client
	ctx := context.Background()
	geminiClient, err := client.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	// Initialize PDF processor and validators
	pdfProcessor := service.NewPDFProcessor()
	validator, err := service.NewInvoiceValidator(cfg.GSTRules)
	if err != nil {
		log.Fatalf("Failed to compile invoice schema: %v", err)
	}
	reconciler := service.NewReconcileService(cfg.GSTRules)

	// Initialize service layer
	invoiceService := service.NewInvoiceService(pdfProcessor, geminiClient, validator, reconciler)

	// Initialize handler layer
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	reconcileHandler := handler.NewReconcileHandler(invoiceService)

	// Setup Gin router
	router := gin.Default()

	// Cap in-memory multipart buffering at the configured upload limit
	router.MaxMultipartMemory = cfg.MaxFileSize

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Accounting Copilot Backend",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/generate", invoiceHandler.GenerateInvoice)
		}
		api.POST("/reconcile", reconcileHandler.Reconcile)
	}

	// Start server
	log.Printf("Starting Accounting Copilot Backend on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
