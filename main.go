package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sahilm-dev/vidtube/auth"
	"github.com/sahilm-dev/vidtube/controllers"
	"github.com/sahilm-dev/vidtube/database"
	"github.com/sahilm-dev/vidtube/middleware"
	"github.com/sahilm-dev/vidtube/repositories/users"
	"github.com/sahilm-dev/vidtube/services"
	"github.com/sahilm-dev/vidtube/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg, err := auth.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	tokens, err := auth.NewTokenManager(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db := database.Database()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("ensure indexes: ", err)
	}

	media, err := newMediaStorage(ctx)
	if err != nil {
		log.Fatal("media storage: ", err)
	}

	repo := users.NewMongoRepository(db)
	svc := services.NewUserService(repo, tokens, media)
	v := utils.NewImageValidator()

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api/v1/users")
	api.POST("/register", controllers.Register(svc, v))
	api.POST("/login", controllers.Login(svc))
	api.POST("/refresh-token", controllers.Refresh(svc))

	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(tokens))
	{
		secured.POST("/logout", controllers.Logout(svc))
		secured.PUT("/change-password", controllers.ChangePassword(svc))
		secured.GET("/current-user", controllers.CurrentUser(svc))
		secured.PATCH("/update-account", controllers.UpdateAccount(svc))
		secured.PATCH("/update-avatar", controllers.UpdateAvatar(svc, v))
		secured.PATCH("/update-cover-image", controllers.UpdateCoverImage(svc, v))
		secured.GET("/channel/:username", controllers.ChannelProfile(svc))
		secured.GET("/watch-history", controllers.WatchHistory(svc))
	}

	// Start server on port 8080 (default)
	r.Run()
}

// newMediaStorage picks the object-storage backend. The bucket began life on
// GCS and later moved to Cloudflare R2; both remain supported.
func newMediaStorage(ctx context.Context) (services.MediaStorage, error) {
	if strings.EqualFold(os.Getenv("MEDIA_STORAGE"), "r2") {
		return utils.NewR2Storage(ctx)
	}
	return utils.NewGCSStorage(ctx)
}
