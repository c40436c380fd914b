package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link token purposes. A link token only opens the flow it was issued for.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token issued for another purpose")
)

// Claims identify the caller. The `_id` key keeps tokens compatible with
// the mobile and admin clients.
type Claims struct {
	UserID  string `json:"_id"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.UserID)
}

// TokenService signs and verifies access, refresh and email-link tokens.
// Refresh tokens use their own secret so an access token can never be
// replayed against the refresh endpoint.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	emailTTL      time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		emailTTL:      emailTTL,
		now:           time.Now,
	}
}

func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) IssueAccess(userID primitive.ObjectID, isAdmin bool) (string, error) {
	return s.sign(s.accessSecret, Claims{UserID: userID.Hex(), IsAdmin: isAdmin}, s.accessTTL)
}

func (s *TokenService) IssueRefresh(userID primitive.ObjectID) (string, error) {
	return s.sign(s.refreshSecret, Claims{UserID: userID.Hex()}, s.refreshTTL)
}

// IssueLink signs the short-lived token embedded in an emailed link.
func (s *TokenService) IssueLink(userID primitive.ObjectID, purpose string) (string, error) {
	return s.sign(s.accessSecret, Claims{UserID: userID.Hex(), Purpose: purpose}, s.emailTTL)
}

func (s *TokenService) ParseAccess(raw string) (*Claims, error) {
	claims, err := s.parse(s.accessSecret, raw)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (s *TokenService) ParseRefresh(raw string) (*Claims, error) {
	return s.parse(s.refreshSecret, raw)
}

func (s *TokenService) ParseLink(raw, purpose string) (*Claims, error) {
	claims, err := s.parse(s.accessSecret, raw)
	if err != nil {
		return nil, err
	}
	if purpose == "" || claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (s *TokenService) sign(secret []byte, claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (s *TokenService) parse(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.Wrap(ErrInvalidToken, errMessage(err))
	}
	if !primitive.IsValidObjectID(claims.UserID) {
		return nil, errors.Wrap(ErrInvalidToken, "subject is not an object id")
	}
	return claims, nil
}

func errMessage(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
