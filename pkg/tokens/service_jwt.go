package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceClaims identify this service on outbound calls to the comms and
// engagement collaborators.
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

func SignServiceToken(service string, secret []byte, ttl time.Duration) (string, error) {
	claims := ServiceClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   service,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ServiceClaimsFromToken(raw string, secret []byte) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
