package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer      = "ripple-api"
	tokenAudience    = "ripple-client"
	refreshTokenType = "refresh"

	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Check for existing username/email before hashing; the unique
	// constraints still back this up under concurrent registration.
	if existing, err := s.userRepo.GetByUsername(c.UserContext(), req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A user with that username already exists"))
	}
	if existing, err := s.userRepo.GetByEmail(c.UserContext(), req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A user with that email already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	accessToken, err := s.generateAccessToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	refreshToken, err := s.generateRefreshToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	slog.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "User registered successfully.",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.userRepo.GetByUsername(c.UserContext(), req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if user == nil {
		observability.AuthFailures.WithLabelValues("unknown_user").Inc()
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("User not found"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		observability.AuthFailures.WithLabelValues("bad_password").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if !user.IsActive {
		observability.AuthFailures.WithLabelValues("inactive").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Account is deactivated"))
	}

	accessToken, err := s.generateAccessToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	refreshToken, err := s.generateRefreshToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	slog.InfoContext(c.UserContext(), "user logged in",
		slog.Uint64("user_id", uint64(user.ID)),
	)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// Refresh handles POST /api/auth/refresh. It mints a fresh access token
// from a valid, unrevoked refresh token.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	claims, err := s.parseRefreshToken(req.Refresh)
	if err != nil {
		observability.AuthFailures.WithLabelValues("bad_refresh").Inc()
		msg := "Invalid refresh token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "Refresh token has expired"
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(msg))
	}

	if jti, _ := claims["jti"].(string); jti != "" {
		revoked, rerr := s.isTokenRevoked(c.Context(), jti)
		if rerr != nil {
			slog.ErrorContext(c.UserContext(), "token revocation check failed", "error", rerr)
			observability.AuthFailures.WithLabelValues("revocation_check").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unable to verify token"))
		}
		if revoked {
			observability.AuthFailures.WithLabelValues("revoked_refresh").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid refresh token"))
	}
	username, _ := claims["username"].(string)

	accessToken, err := s.generateAccessToken(uint(userID), username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access": accessToken,
	})
}

// Logout handles POST /api/auth/logout. Revocation is terminal: the JTI
// lands in the persisted blacklist and is mirrored to Redis until the
// token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	claims, err := s.parseRefreshToken(req.Refresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid refresh token"))
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid refresh token"))
	}

	sub, _ := claims["sub"].(string)
	userID, _ := strconv.ParseUint(sub, 10, 32)

	expiresAt := time.Now().Add(refreshTokenTTL)
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}

	revoked, err := s.tokenRepo.Revoke(c.UserContext(), jti, uint(userID), expiresAt)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if !revoked {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token has already been revoked"))
	}

	// Mirror into Redis so the auth middleware can reject without a DB hit.
	if s.redis != nil {
		if ttl := time.Until(expiresAt); ttl > 0 {
			if err := s.redis.Set(c.Context(), cache.BlacklistKey(jti), "1", ttl).Err(); err != nil {
				slog.WarnContext(c.UserContext(), "failed to mirror revoked token to redis",
					slog.String("error", err.Error()))
			}
		}
	}

	observability.TokensRevoked.Inc()
	slog.InfoContext(c.UserContext(), "refresh token revoked",
		slog.Uint64("user_id", userID),
	)

	return c.SendStatus(fiber.StatusResetContent)
}

// parseRefreshToken validates signature, expiry, issuer, audience, and the
// refresh type claim, returning the claims on success.
func (s *Server) parseRefreshToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if issuer, _ := claims["iss"].(string); issuer != tokenIssuer {
		return nil, errors.New("invalid token issuer")
	}
	if audience, _ := claims["aud"].(string); audience != tokenAudience {
		return nil, errors.New("invalid token audience")
	}
	if typ, _ := claims["typ"].(string); typ != refreshTokenType {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

func (s *Server) generateAccessToken(userID uint, username string) (string, error) {
	return s.generateToken(userID, username, accessTokenTTL, "")
}

func (s *Server) generateRefreshToken(userID uint, username string) (string, error) {
	return s.generateToken(userID, username, refreshTokenTTL, refreshTokenType)
}

func (s *Server) generateToken(userID uint, username string, ttl time.Duration, typ string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}
	if typ != "" {
		claims["typ"] = typ
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique token identifier
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
