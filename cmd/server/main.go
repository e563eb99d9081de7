package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"festivelo/pkg/broker"
	"festivelo/pkg/cache"
	"festivelo/pkg/database"
	"festivelo/pkg/feed"
	"festivelo/pkg/handlers"
	"festivelo/pkg/hub"
	"festivelo/pkg/middleware"
	"festivelo/pkg/repository"
	"festivelo/pkg/server"
	"festivelo/pkg/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/golang-jwt/jwt/v5"
)

func main() {
	db := database.Connect()
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	database.Migrate(db)
	go cleanExpiredSessions(db)

	log.Println("[SERVER] Connecting to Redis...")
	redis := cache.New()
	defer redis.Close()

	chgBroker := broker.New()
	defer chgBroker.Close()
	log.Println("[SERVER] Redis connected")

	wsHub := hub.New()

	tripRepo := repository.NewTripRepository(db, chgBroker)
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	tripSvc := services.NewTripService(tripRepo, userRepo, redis)
	favoriteSvc := services.NewFavoriteService(favoriteRepo)
	reviewSvc := services.NewReviewService(reviewRepo)
	userSvc := services.NewUserService(userRepo, tripRepo, reviewRepo)

	auth := handlers.NewAuth(db)
	trips := handlers.NewTrips(tripSvc)
	favorites := handlers.NewFavorites(favoriteSvc)
	reviews := handlers.NewReviews(reviewSvc)
	users := handlers.NewUsers(userSvc)

	// Bridge the trip store's mutation feed into the websocket hub.
	changeFeed := feed.New(chgBroker, wsHub, tripRepo)
	changeFeed.Start()

	app := server.NewApp("festivelo")

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.Register)

	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.Login)

	authGroup.Post("/refresh", auth.Refresh)
	authProtected := authGroup.Group("", middleware.AuthMiddleware)
	authProtected.Get("/me", auth.Me)
	authProtected.Post("/logout", auth.Logout)
	authProtected.Post("/logout-all", auth.LogoutAll)
	authProtected.Get("/sessions", auth.Sessions)

	tripGroup := app.Group("/api/trips", middleware.AuthMiddleware)
	tripGroup.Get("/trips", trips.List)
	tripGroup.Get("/trips/:id", trips.Get)
	tripGroup.Post("/trips", trips.Create)
	tripGroup.Put("/trips/:id", trips.Update)
	tripGroup.Delete("/trips/:id", trips.Delete)
	tripGroup.Post("/trips/:id/collaborators", trips.AddCollaborator)
	tripGroup.Put("/trips/:id/plans/day", trips.SetDayPlan)

	favGroup := app.Group("/favorites", middleware.AuthMiddleware)
	favGroup.Post("/", favorites.Add)
	favGroup.Get("/", favorites.List)
	favGroup.Delete("/:placeId", favorites.Delete)

	reviewGroup := app.Group("/api/review", middleware.AuthMiddleware)
	reviewGroup.Post("/", reviews.Create)
	reviewGroup.Get("/place/:place_id", reviews.ListByPlace)
	reviewGroup.Get("/user/:user_id", reviews.ListByUser)
	reviewGroup.Put("/:id", reviews.Update)
	reviewGroup.Delete("/:id", reviews.Delete)

	userGroup := app.Group("/userManagement", middleware.AuthMiddleware)
	userGroup.Put("/name", users.ChangeName)
	userGroup.Put("/password", users.ChangePassword)
	userGroup.Delete("/:userId", users.Delete)

	app.Get("/hub/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"clients": wsHub.ClientCount()})
	})

	app.Use("/ws", parseWSToken)
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(int)
		email, _ := c.Locals("email").(string)
		wsHub.HandleClientConn(c, userID, email)
	}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	addr := "0.0.0.0:" + port
	log.Printf("[SERVER] WebSocket: ws://<domain>/ws")
	log.Printf("[SERVER] Listening on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[SERVER] Failed to start: %v", err)
	}
}

// parseWSToken extracts an optional JWT identity before the websocket
// upgrade. An anonymous connection still gets change broadcasts; identity is
// only used for logging and operational visibility.
func parseWSToken(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}

	userID := 0
	email := ""

	if tokenStr != "" {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "dev-secret-key-change-in-production"
		}

		token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err == nil && token.Valid {
			claims := token.Claims.(*jwt.MapClaims)
			if id, ok := (*claims)["user_id"].(float64); ok {
				userID = int(id)
			}
			if e, ok := (*claims)["email"].(string); ok {
				email = e
			}
		}
	}

	c.Locals("user_id", userID)
	c.Locals("email", email)
	return c.Next()
}

func cleanExpiredSessions(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		db.Exec(`DELETE FROM sessions WHERE expires_at < NOW()`)
	}
}
