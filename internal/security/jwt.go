package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// Используется SigningMethodRS256.
// JWT только упаковывает access-токен в cookie: jti - UUID токена в хранилище сессий,
// поэтому отзыв токена не зависит от exp.
type JWTSigner struct {
	private   *rsa.PrivateKey
	public    *rsa.PublicKey
	issuer    string
	audience  string
	clockSkew time.Duration
}

func NewJWTSigner(private *rsa.PrivateKey, public *rsa.PublicKey, issuer, audience string, clockSkew time.Duration) *JWTSigner {
	if public == nil && private != nil {
		public = &private.PublicKey
	}

	return &JWTSigner{
		private:   private,
		public:    public,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}
}

type AccessClaims struct {
	jwt.StandardClaims // Id = UUID access-токена, Subject = id пользователя
}

// SignAccessToken выпускает JWT с sub=userID, jti=token и exp=expiresAt
func (s *JWTSigner) SignAccessToken(userID domain.UserID, token uuid.UUID, expiresAt, now time.Time) (string, error) {
	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        token.String(),
			Subject:   strconv.FormatInt(int64(userID), 10),
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  now.Unix(),
			NotBefore: now.Add(-s.clockSkew).Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	return t.SignedString(s.private)
}

// ParseAndValidate проверяет подпись, issuer, audience и время относительно now
func (s *JWTSigner) ParseAndValidate(tokenStr string, now time.Time) (*AccessClaims, error) {
	claims := &AccessClaims{}
	// временные клеймы проверяем сами, с допуском clockSkew и внешними часами
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok || t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errs.ErrInvalidToken
		}
		return s.public, nil
	})
	if err != nil || !token.Valid {
		return nil, errs.ErrInvalidToken
	}

	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, errs.ErrInvalidIssuer
	}
	if !claims.VerifyAudience(s.audience, true) {
		return nil, errs.ErrInvalidAudience
	}

	nbf := time.Unix(claims.NotBefore, 0).Add(-s.clockSkew)
	if now.Before(nbf) {
		return nil, errs.ErrTokenNotValidYet
	}
	exp := time.Unix(claims.ExpiresAt, 0).Add(s.clockSkew)
	if claims.ExpiresAt == 0 || !exp.After(now) {
		return nil, errs.ErrAccessTokenExpired
	}

	return claims, nil
}

// SubjectAsUserID парсит sub в domain.UserID.
func SubjectAsUserID(claims *AccessClaims) (domain.UserID, error) {
	if claims == nil || claims.Subject == "" {
		return 0, errs.ErrInvalidSubject
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrInvalidSubject
	}

	return domain.UserID(id), nil
}

func TokenID(claims *AccessClaims) (uuid.UUID, error) {
	if claims == nil {
		return uuid.Nil, errs.ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Id)
	if err != nil {
		return uuid.Nil, errs.ErrInvalidToken
	}
	return id, nil
}

func LoadRSAPrivateKeyFromPEM(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not RSA private key")
	}

	return pk, nil
}

func LoadRSAPublicKeyFromPEM(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(b)
}

// GenerateRSAKey - для dev без файлов ключей: токены не переживут рестарт
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}
