package middleware

import (
	"fmt"
	"strings"
	"time"

	"edusynapse/config"
	"edusynapse/database"
	"edusynapse/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GuestEmail identifies the shared anonymous account used when no token is sent.
const GuestEmail = "guest@edusynapse.dev"

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, username, role, email string) (string, error) {
	expiry := time.Duration(config.AppConfig.JWTExpiry) * time.Hour
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"role":     role,
		"email":    email,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	userID, err := userIDFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": err.Error(),
		})
	}

	c.Locals("userId", userID)
	return c.Next()
}

// OptionalJWTMiddleware resolves the user from the token when present, and
// falls back to the shared guest account otherwise. Learning endpoints stay
// usable without registration.
func OptionalJWTMiddleware(c *fiber.Ctx) error {
	if userID, err := userIDFromHeader(c); err == nil {
		c.Locals("userId", userID)
		return c.Next()
	}

	guest, err := GetOrCreateGuestUser()
	if err != nil {
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve guest user!", nil)
	}

	c.Locals("userId", guest.ID)
	return c.Next()
}

// GetOrCreateGuestUser returns the shared guest account, creating it on first use.
func GetOrCreateGuestUser() (*models.User, error) {
	var user models.User
	result := database.Database.Db.Where("email = ? AND is_deleted = ?", GuestEmail, false).First(&user)
	if result.Error == nil {
		return &user, nil
	}

	user = models.User{
		Email:       GuestEmail,
		Username:    "guest",
		Password:    "-",
		FullName:    "Guest Learner",
		IsGuest:     true,
		IsActive:    true,
		Preferences: models.MustJSON(models.DefaultPreferences()),
	}
	if err := database.Database.Db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func userIDFromHeader(c *fiber.Ctx) (uint, error) {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, fmt.Errorf("Missing or invalid Authorization header")
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, fmt.Errorf("Invalid Authorization header format")
	}

	tokenString := authHeader[len("Bearer "):]

	// Parse and validate the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		jwtSecret := []byte(config.AppConfig.JWTKey)
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return 0, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return 0, fmt.Errorf("Invalid token payload")
	}

	// JWT claims are stored as float64, cast to uint
	userID := claims["userId"].(float64)
	return uint(userID), nil
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
