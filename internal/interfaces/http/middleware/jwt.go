package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authentication context keys and headers
const (
	ClaimsKey       = "cashier_claims"
	CashierIDKey    = "cashier_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	CashierIDHeader = "X-Cashier-ID"
)

var errMissingCredentials = errors.New("missing bearer credentials")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for failed authentication attempts
	Logger *zap.Logger
}

// JWTAuth creates cashier authentication middleware. A valid bearer token
// identifies the cashier for the rest of the request.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		for _, skip := range cfg.SkipPaths {
			if c.Request.URL.Path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, cfg.Logger, errMissingCredentials, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, cfg.Logger, errMissingCredentials, "Invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, BearerPrefix)
		if token == "" {
			abortUnauthorized(c, cfg.Logger, errMissingCredentials, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "Token validation failed")
			return
		}

		c.Set(ClaimsKey, claims)
		setCashier(c, claims.CashierID)
		c.Next()
	}
}

// CashierFromHeader trusts the X-Cashier-ID header. Used when token
// authentication is disabled.
func CashierFromHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(CashierIDHeader)); id != "" {
			setCashier(c, id)
		}
		c.Next()
	}
}

// RequireRole rejects requests whose token lacks role. It must run after
// JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Requires role "+role, GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the token claims, or nil when the request carried none
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetCashierID retrieves the authenticated cashier, or ""
func GetCashierID(c *gin.Context) string {
	return c.GetString(CashierIDKey)
}

func setCashier(c *gin.Context, cashierID string) {
	c.Set(CashierIDKey, cashierID)
	c.Request = c.Request.WithContext(logger.WithCashierID(c.Request.Context(), cashierID))
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingCashierID):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token claims"
	case errors.Is(err, auth.ErrInvalidToken):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}
