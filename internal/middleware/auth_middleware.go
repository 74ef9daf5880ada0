package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"jovenva-attendance/internal/shared/apperror"
	"jovenva-attendance/internal/shared/contextutil"
	"jovenva-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

var (
	errTokenMissing = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	errTokenInvalid = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	errTokenExpired = apperror.New(apperror.CodeUnauthorized, "Token expired", http.StatusUnauthorized)
)

// AuthMiddleware validates an HS256 bearer token (or the access_token cookie)
// and stores user_id and role on both the gin and request contexts.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, errTokenMissing)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, errTokenExpired)
				return
			}
			abortWith(c, errTokenInvalid)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, errTokenInvalid)
			return
		}

		userID := stringClaim(claims, "sub", "user_id")
		if userID == "" {
			abortWith(c, apperror.New(apperror.CodeUnauthorized, "User ID not found in token", http.StatusUnauthorized))
			return
		}

		role := strings.ToUpper(stringClaim(claims, "app_role", "role"))
		if role == "" {
			role = RoleEmployee
		}

		c.Set("user_id", userID)
		c.Set("role", role)

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithRole(ctx, role)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, zap.L()).With(zap.String("user_id", userID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleMiddleware lets the request through only for the listed roles.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" || !slices.Contains(allowedRoles, role) {
			abortWith(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

func stringClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if v, ok := claims[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
