package jira

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ConnectClaims are the claims Atlassian Connect puts in webhook JWTs.
type ConnectClaims struct {
	jwt.RegisteredClaims

	// QSH is the query string hash binding the token to one request.
	QSH string `json:"qsh"`
}

// VerifyConnectRequest verifies the Connect JWT carried by a webhook request,
// either in an "Authorization: JWT <token>" header or a jwt query parameter.
// The token must be HS256-signed with secret, unexpired, issued by issuer
// when issuer is non-empty, and its qsh claim must match the request.
func VerifyConnectRequest(r *http.Request, secret []byte, issuer string) (*ConnectClaims, error) {
	token := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "JWT ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "JWT "))
	} else {
		token = r.URL.Query().Get("jwt")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no token in request", ErrWebhookInvalidToken)
	}

	claims, verifyErr := VerifyConnectJWT(token, secret, issuer)
	if verifyErr != nil {
		return nil, verifyErr
	}

	if want := QueryStringHash(r.Method, r.URL.Path, r.URL.Query()); claims.QSH != want {
		return nil, ErrWebhookQSHMismatch
	}
	return claims, nil
}

// VerifyConnectJWT validates a Connect token's signature, expiry and issuer.
// It does not check the qsh claim.
func VerifyConnectJWT(tokenString string, secret []byte, issuer string) (*ConnectClaims, error) {
	claims := &ConnectClaims{}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, parseErr := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, opts...)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookInvalidToken, parseErr)
	}
	if !token.Valid {
		return nil, ErrWebhookInvalidToken
	}

	return claims, nil
}

// QueryStringHash computes the Connect qsh for a request: the hex SHA-256 of
// METHOD&path&query, where the query is sorted, percent-encoded, excludes the
// jwt parameter, and joins repeated values with commas.
func QueryStringHash(method, path string, query url.Values) string {
	canonicalPath := path
	if canonicalPath == "" {
		canonicalPath = "/"
	}
	if len(canonicalPath) > 1 {
		canonicalPath = strings.TrimSuffix(canonicalPath, "/")
	}
	canonicalPath = strings.ReplaceAll(canonicalPath, "&", "%26")

	keys := make([]string, 0, len(query))
	for k := range query {
		if k != "jwt" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		values := make([]string, len(query[k]))
		for i, v := range query[k] {
			values[i] = percentEncode(v)
		}
		slices.Sort(values)
		pairs = append(pairs, percentEncode(k)+"="+strings.Join(values, ","))
	}

	canonical := strings.ToUpper(method) + "&" + canonicalPath + "&" + strings.Join(pairs, "&")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
