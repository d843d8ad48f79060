package handler

import (
	"chatup/backend/internal/ids"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	tokenIssuer  = "chatup-service"
	anonIDClaim  = "anon_id"
	bearerPrefix = "Bearer "
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies the JWTs that carry an anonymous id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for anonID.
func (i *TokenIssuer) Issue(anonID string) (string, error) {
	claims := jwt.MapClaims{
		anonIDClaim: anonID,
		"exp":       i.now().Add(i.ttl).Unix(),
		"iss":       tokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	return signed, errors.Wrap(err, "sign token")
}

// AnonID verifies tokenString and returns the id it carries.
func (i *TokenIssuer) AnonID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	anonID, _ := claims[anonIDClaim].(string)
	if !ids.IsValidToken(anonID) {
		return "", errors.Wrap(ErrInvalidToken, "bad anon_id claim")
	}
	return anonID, nil
}

// Resolve turns whatever the client presented into a session token: a JWT
// yields its embedded id, a bare UUIDv4 is used as is, anything else gets a
// fresh id.
func (i *TokenIssuer) Resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
	case ids.IsValidToken(raw):
		return raw
	default:
		if anonID, err := i.AnonID(raw); err == nil {
			return anonID
		}
	}
	return ids.NewToken()
}

// GetAnonID creates a new anonymous id and returns it with its JWT.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonID := ids.NewToken()

	token, err := h.Tokens.Issue(anonID)
	if err != nil {
		h.logger.Error("failed to create token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "anon_id": anonID})
}

// presentedToken reads the token from the Authorization header or the
// "token" query parameter.
func presentedToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return c.Query("token")
}
