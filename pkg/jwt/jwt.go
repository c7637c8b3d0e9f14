package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Rôles portés par les jetons du fournisseur d'authentification.
const (
	RoleAdmin    = "admin"    // administrateur du catalogue et des prix de référence
	RoleSupplier = "supplier" // fournisseur (grilles de prix)
	RoleClient   = "client"   // dépôt / maquis détenteur d'un carnet de crédit
)

// Claims claims standards + champs applicatifs. Le sujet (sub) est l'identifiant utilisateur;
// pour un fournisseur il sert aussi de supplierId.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// Identity identité extraite d'un jeton valide.
type Identity struct {
	UserID         string
	OrganizationID string
	Role           string
}

// Generate signe un jeton HS256. Les jetons de production sont émis par le fournisseur
// d'authentification; cette fonction sert aux outils internes et aux tests.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vide")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		OrganizationID: id.OrganizationID,
		Role:           id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valide le jeton (signature HMAC, expiration, émetteur si fourni) et renvoie l'identité.
func Parse(secret, issuer, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vide")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims invalides")
	}
	return Identity{
		UserID:         claims.Subject,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}, nil
}
