package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"festivelo/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type cachedUser struct {
	User      models.User
	ExpiresAt time.Time
}

type userCache struct {
	mu   sync.RWMutex
	byID map[int]*cachedUser
}

type AuthHandler struct {
	db        *sql.DB
	jwtSecret string
	users     *userCache
}

func NewAuth(db *sql.DB) *AuthHandler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-key-change-in-production"
	}
	ah := &AuthHandler{
		db:        db,
		jwtSecret: secret,
		users: &userCache{
			byID: make(map[int]*cachedUser),
		},
	}
	go ah.cleanupUsers()
	return ah
}

func (ah *AuthHandler) getUser(id int) (models.User, bool) {
	ah.users.mu.RLock()
	defer ah.users.mu.RUnlock()
	if item, ok := ah.users.byID[id]; ok && time.Now().Before(item.ExpiresAt) {
		return item.User, true
	}
	return models.User{}, false
}

func (ah *AuthHandler) setUser(user models.User) {
	ah.users.mu.Lock()
	ah.users.byID[user.ID] = &cachedUser{User: user, ExpiresAt: time.Now().Add(15 * time.Minute)}
	ah.users.mu.Unlock()
}

func (ah *AuthHandler) deleteUser(id int) {
	ah.users.mu.Lock()
	delete(ah.users.byID, id)
	ah.users.mu.Unlock()
}

func (ah *AuthHandler) cleanupUsers() {
	for {
		time.Sleep(10 * time.Minute)
		ah.users.mu.Lock()
		now := time.Now()
		for k, v := range ah.users.byID {
			if now.After(v.ExpiresAt) {
				delete(ah.users.byID, k)
			}
		}
		ah.users.mu.Unlock()
	}
}

func (ah *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateEmail(req.Email); err != nil {
		return badRequest(c, err.Error())
	}
	if err := validatePassword(req.Password); err != nil {
		return badRequest(c, err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("[AUTH] hash error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Internal server error"})
	}

	var user models.User
	err = ah.db.QueryRow(
		`INSERT INTO users (email, name, password) VALUES ($1, $2, $3)
		 RETURNING id, uuid, email, name, created_at`,
		req.Email, strings.TrimSpace(req.Name), string(hashed),
	).Scan(&user.ID, &user.UUID, &user.Email, &user.Name, &user.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return c.Status(409).JSON(fiber.Map{"error": "duplicate_user", "message": "An account with that email already exists"})
		}
		log.Println("[AUTH] insert error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Could not create account"})
	}

	ah.setUser(user)
	return ah.createSessionAndRespond(c, user, 201)
}

func (ah *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	var user models.User
	var hashedPw string
	err := ah.db.QueryRow(
		`SELECT id, uuid, email, name, password, created_at FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(req.Email)),
	).Scan(&user.ID, &user.UUID, &user.Email, &user.Name, &hashedPw, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return c.Status(401).JSON(fiber.Map{"error": "bad_credentials", "message": "Email or password incorrect"})
	}
	if err != nil {
		log.Println("[AUTH] query error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Internal server error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPw), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "bad_credentials", "message": "Email or password incorrect"})
	}

	ah.setUser(user)
	return ah.createSessionAndRespond(c, user, 200)
}

func (ah *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.BodyParser(&req)
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refresh_token")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token not provided")
	}

	var session models.Session
	var user models.User
	err := ah.db.QueryRow(
		`SELECT s.id, s.user_id, s.expires_at, u.uuid, u.email, u.name, u.created_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.refresh_token = $1`, req.RefreshToken,
	).Scan(&session.ID, &session.UserID, &session.ExpiresAt, &user.UUID, &user.Email, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return c.Status(401).JSON(fiber.Map{"error": "bad_session", "message": "Session invalid or expired"})
	}
	if err != nil {
		log.Println("[AUTH] refresh error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Internal server error"})
	}

	if time.Now().After(session.ExpiresAt) {
		ah.db.Exec(`DELETE FROM sessions WHERE id = $1`, session.ID)
		return c.Status(401).JSON(fiber.Map{"error": "bad_session", "message": "Session expired, please log in again"})
	}

	user.ID = session.UserID

	newRefresh := generateRefreshToken()
	newExpiry := time.Now().Add(30 * 24 * time.Hour)
	_, err = ah.db.Exec(
		`UPDATE sessions SET refresh_token = $1, expires_at = $2 WHERE id = $3`,
		newRefresh, newExpiry, session.ID,
	)
	if err != nil {
		log.Println("[AUTH] session update error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Internal server error"})
	}

	accessToken := ah.generateAccessToken(user)
	ah.setRefreshCookie(c, newRefresh, newExpiry)
	ah.setUser(user)

	return c.JSON(models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		User:         user,
		ExpiresIn:    3600,
	})
}

func (ah *AuthHandler) Me(c *fiber.Ctx) error {
	userID := requesterID(c)

	if user, ok := ah.getUser(userID); ok {
		return c.JSON(fiber.Map{"user": user})
	}

	var user models.User
	err := ah.db.QueryRow(
		`SELECT id, uuid, email, name, created_at FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.UUID, &user.Email, &user.Name, &user.CreatedAt)

	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user_not_found", "message": "User not found"})
	}

	ah.setUser(user)
	return c.JSON(fiber.Map{"user": user})
}

func (ah *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		ah.db.Exec(`DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.BodyParser(&req)
	if req.RefreshToken != "" {
		ah.db.Exec(`DELETE FROM sessions WHERE refresh_token = $1`, req.RefreshToken)
	}

	if userID, ok := c.Locals("user_id").(int); ok {
		ah.deleteUser(userID)
	}

	ah.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"status": "ok"})
}

func (ah *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID := requesterID(c)
	ah.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	ah.deleteUser(userID)
	ah.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"status": "ok", "message": "All sessions closed"})
}

func (ah *AuthHandler) Sessions(c *fiber.Ctx) error {
	userID := requesterID(c)

	rows, err := ah.db.Query(
		`SELECT id, user_agent, ip, expires_at, created_at FROM sessions
		 WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Internal server error"})
	}
	defer rows.Close()

	sessions := []fiber.Map{}
	for rows.Next() {
		var s models.Session
		rows.Scan(&s.ID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
		sessions = append(sessions, fiber.Map{
			"id": s.ID, "user_agent": s.UserAgent, "ip": s.IP,
			"expires_at": s.ExpiresAt, "created_at": s.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (ah *AuthHandler) createSessionAndRespond(c *fiber.Ctx, user models.User, status int) error {
	accessToken := ah.generateAccessToken(user)
	refreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	_, err := ah.db.Exec(
		`INSERT INTO sessions (user_id, refresh_token, user_agent, ip, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, refreshToken, c.Get("User-Agent"), c.IP(), expiresAt,
	)
	if err != nil {
		log.Println("[AUTH] session insert error:", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal", "message": "Could not create session"})
	}

	ah.setRefreshCookie(c, refreshToken, expiresAt)

	return c.Status(status).JSON(models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		ExpiresIn:    3600,
	})
}

func (ah *AuthHandler) generateAccessToken(user models.User) string {
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"uuid":       user.UUID,
		"email":      user.Email,
		"name":       user.Name,
		"exp":        time.Now().Add(1 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
		"token_type": "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, _ := token.SignedString([]byte(ah.jwtSecret))
	return s
}

func generateRefreshToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (ah *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string, expires time.Time) {
	secure := os.Getenv("GO_ENV") == "production"
	c.Cookie(&fiber.Cookie{
		Name: "refresh_token", Value: token, Expires: expires,
		HTTPOnly: true, Secure: secure, SameSite: "Lax", Path: "/",
	})
}

func (ah *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name: "refresh_token", Value: "", Expires: time.Now().Add(-1 * time.Hour),
		HTTPOnly: true, Path: "/",
	})
}

func validateEmail(e string) error {
	if len(e) < 6 || len(e) > 254 {
		return fiber.NewError(400, "Invalid email")
	}
	at := strings.IndexByte(e, '@')
	if at < 1 || at == len(e)-1 || !strings.Contains(e[at:], ".") {
		return fiber.NewError(400, "Invalid email")
	}
	return nil
}

func validatePassword(p string) error {
	if len(p) < 8 {
		return fiber.NewError(400, "Password must have at least 8 characters")
	}
	if len(p) > 128 {
		return fiber.NewError(400, "Password too long (max 128)")
	}
	return nil
}
