package middleware

import (
	"log/slog"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	adapter "github.com/gwatts/gin-adapter"

	"github.com/semanticallynull/bikely-backend/internal/auth"
)

// JWT validates the bearer token and stores its claims in the request
// context. Requests without a valid token are answered with 401.
func JWT(v *validator.Validator) gin.HandlerFunc {
	m := jwtmiddleware.New(v.ValidateToken,
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			slog.DebugContext(r.Context(), "rejected token", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"Invalid or missing token"}`))
		}),
	)
	return adapter.Wrap(m.CheckJWT)
}

// RequireRole rejects callers whose token was issued for another role.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func validatedClaims(c *gin.Context) (*validator.ValidatedClaims, bool) {
	claims, ok := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	return claims, ok
}

// GetClaims returns the application claims of the caller.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	vc, ok := validatedClaims(c)
	if !ok {
		return nil, false
	}
	claims, ok := vc.CustomClaims.(*auth.Claims)
	return claims, ok
}

// GetSubject extracts the caller's ID (sub claim) from the validated token.
func GetSubject(c *gin.Context) (uuid.UUID, bool) {
	vc, ok := validatedClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(vc.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
