package main

import (
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/handler"
	"CampusChatbot_Backend/internal/middleware"
	"CampusChatbot_Backend/internal/provider"
	"CampusChatbot_Backend/internal/storage"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	storage.InitDB(cfg.DBPath)
	defer storage.CloseDB()

	llm, err := provider.New(cfg.Provider)
	if err != nil {
		log.Fatal("main(): Failed to create LLM provider: ", err)
	}
	handler.InitAuth(cfg)
	handler.InitRelay(llm, cfg)

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.POST("/register", middleware.AuthRateLimiter(), handler.Register)
	router.POST("/login", middleware.AuthRateLimiter(), handler.Login)
	router.POST("/logout", handler.Logout)
	router.GET("/health", handler.Health)

	protected := router.Group("/").Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", handler.Me)
	}

	router.GET("/ws/chat", handler.HandleChat)

	log.Fatal(router.Run(":" + cfg.Port))
}
