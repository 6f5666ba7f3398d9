package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const scoreTokenIssuer = "tetrecs"

// ScoreClaims vouch for the final score of one finished game. The server
// issues them at game over; submitting a high score requires them.
type ScoreClaims struct {
	GameID string `json:"game_id"`
	Score  int    `json:"score"`
	jwt.RegisteredClaims
}

// GenerateScoreToken signs a short-lived token for a finished game.
func GenerateScoreToken(secret string, ttl time.Duration, gameID string, score int) (string, error) {
	now := time.Now()
	claims := &ScoreClaims{
		GameID: gameID,
		Score:  score,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    scoreTokenIssuer,
			Subject:   gameID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateScoreToken checks signature, expiry and issuer and returns the claims.
func ValidateScoreToken(secret, tokenString string) (*ScoreClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ScoreClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(scoreTokenIssuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ScoreClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid score token")
}
