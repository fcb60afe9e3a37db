package tokens

import "github.com/golang-jwt/jwt/v5"

var hs256Only = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

// parse verifies the signature and expiry of tokenStr into claims.
func parse(tokenStr string, secret []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, hs256Only, jwt.WithExpirationRequired())
	return err
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	if err := parse(tokenStr, accessSecret, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// RefreshClaimsFromToken also rejects access tokens signed with the refresh secret.
func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := parse(tokenStr, refreshSecret, &claims); err != nil {
		return nil, err
	}
	if claims.Type != "refresh" || claims.ID == "" {
		return nil, ErrNotRefreshToken
	}
	return &claims, nil
}
