package auth

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

var jwtSecretKey []byte

func init() {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Println("Warning: JWT_SECRET_KEY not set, using default insecure key")
		secret = "your-very-secret-key-for-jwt" // fallback
	}
	jwtSecretKey = []byte(secret)
}

// GenerateToken membuat JWT berisi identitas + roles yang nanti
// direkonstruksi menjadi Actor oleh middleware.
func GenerateToken(userID, email string, roles []Role) (string, error) {
	roleStrs := make([]string, len(roles))
	for i, r := range roles {
		roleStrs[i] = string(r)
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"roles":   roleStrs,
		"exp":     time.Now().Add(time.Hour * 72).Unix(), // Token berlaku 72 jam
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecretKey)
}

// ParseToken memvalidasi token dan mengembalikan Actor dari claims-nya.
func ParseToken(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecretKey, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}

	actor := Actor{}
	if userID, ok := claims["user_id"].(string); ok {
		actor.UserID = userID
	}
	if email, ok := claims["email"].(string); ok {
		actor.Email = email
	}
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, raw := range rawRoles {
			if s, ok := raw.(string); ok {
				actor.Roles = append(actor.Roles, Role(s))
			}
		}
	}
	if actor.UserID == "" {
		return Actor{}, ErrInvalidToken
	}
	return actor, nil
}
