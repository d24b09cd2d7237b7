package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookloop/booking-platform/internal/api/middleware"
	"github.com/bookloop/booking-platform/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *models.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJwtKey)
	require.NoError(t, err)

	return token
}

func validClaims(userID uuid.UUID, role string) *models.Claims {
	return &models.Claims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	validToken := signToken(t, validClaims(userID, models.RoleUser))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedMsg    string
		expectNext     bool
	}{
		{
			name:           "ValidToken",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "MissingHeader",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Authorization header is required",
		},
		{
			name:           "MalformedHeader",
			authHeader:     "Basic abc123",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid authorization format",
		},
		{
			name:           "GarbageToken",
			authHeader:     "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
				require.True(t, ok)
				assert.Equal(t, userID, claims.UserID)

				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			// Act
			authMiddleware.Authenticate(next).ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			if tt.expectedMsg != "" {
				assert.JSONEq(t, `{"msg": "`+tt.expectedMsg+`"}`, rr.Body.String())
			}
		})
	}

	t.Run("ExpiredToken", func(t *testing.T) {
		authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

		claims := validClaims(userID, models.RoleUser)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		rr := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run for an expired token")
		})

		authMiddleware.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongSigningKey", func(t *testing.T) {
		authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(userID, models.RoleUser)).
			SignedString([]byte("some-other-key"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run for a forged token")
		})

		authMiddleware.Authenticate(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"msg": "Invalid or expired token"}`, rr.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	userID := uuid.New()

	t.Run("AdminPassesThrough", func(t *testing.T) {
		// Arrange: run the full chain so claims land in the context.
		authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(userID, models.RoleAdmin)))
		rr := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(next)).ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("RegularUserForbidden", func(t *testing.T) {
		authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run for a non-admin user")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(userID, models.RoleUser)))
		rr := httptest.NewRecorder()

		authMiddleware.Authenticate(authMiddleware.RequireAdmin(next)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.JSONEq(t, `{"msg": "Admin access required"}`, rr.Body.String())
	})

	t.Run("NoClaimsInContext", func(t *testing.T) {
		authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run without claims")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		rr := httptest.NewRecorder()

		authMiddleware.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"msg": "Authentication required"}`, rr.Body.String())
	})
}
