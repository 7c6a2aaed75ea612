package main

import (
	"fmt"
	"log"
	"os"

	"lopf/internal/api/handlers"
	"lopf/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	lopfHandler := handlers.NewLOPFHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/lopf", lopfHandler.Solve)
		api.GET("/formulations", handlers.ListFormulations)
		api.GET("/scenarios", handlers.ListScenarios)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting LOPF API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
