package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by the storefront auth token. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateJWT verifies tokenString against keyMaterial. The algorithm is
// read from the unverified token header first: HMAC treats keyMaterial as
// the shared secret, RSA and ECDSA parse it as a PEM-encoded public key.
// The keyfunc still rejects a method/key mismatch, so a token cannot pick
// an algorithm the key was not meant for.
func ValidateJWT(tokenString, keyMaterial string) (*Claims, error) {
	alg, err := tokenAlgorithm(tokenString)
	if err != nil {
		return nil, err
	}

	var keyFunc jwt.Keyfunc
	switch {
	case strings.HasPrefix(alg, "HS"):
		secret := []byte(keyMaterial)
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v (expected HMAC)", token.Header["alg"])
			}
			return secret, nil
		}

	case strings.HasPrefix(alg, "RS"):
		publicKey, err := parsePublicKey[*rsa.PublicKey](keyMaterial, "RSA")
		if err != nil {
			return nil, err
		}
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v (expected RSA)", token.Header["alg"])
			}
			return publicKey, nil
		}

	case strings.HasPrefix(alg, "ES"):
		publicKey, err := parsePublicKey[*ecdsa.PublicKey](keyMaterial, "ECDSA")
		if err != nil {
			return nil, err
		}
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v (expected ECDSA)", token.Header["alg"])
			}
			return publicKey, nil
		}

	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", alg)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// tokenAlgorithm reads the alg header without verifying the signature.
func tokenAlgorithm(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token header: %w", err)
	}
	alg, ok := token.Header["alg"].(string)
	if !ok {
		return "", errors.New("token header missing 'alg' field")
	}
	return alg, nil
}

// parsePublicKey decodes a PEM block and asserts the PKIX key type.
func parsePublicKey[K any](pemKey, kind string) (K, error) {
	var zero K
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return zero, errors.New("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return zero, fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := pub.(K)
	if !ok {
		return zero, fmt.Errorf("public key is not %s", kind)
	}
	return key, nil
}
