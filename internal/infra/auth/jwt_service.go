package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spurt/config"
	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/service"
	"spurt/internal/errors"
)

// TokenTTL is the lifetime of every issued credential token.
const TokenTTL = 120 * time.Minute

// JWTOption customizes a jwtService.
type JWTOption func(*jwtService)

// WithClock replaces the time source used for iat, nbf and exp.
func WithClock(now func() time.Time) JWTOption {
	return func(s *jwtService) {
		s.now = now
	}
}

// jwtService is a concrete implementation of the TokenIssuer interface using the JWT standard.
type jwtService struct {
	secret []byte           // Key for HS256 signatures.
	ttl    time.Duration    // Time-to-live for issued tokens.
	now    func() time.Time // Clock, replaceable in tests.
}

// NewJWTService is the constructor for jwtService.
// An empty signing secret is a configuration error.
func NewJWTService(cfg *config.Config, opts ...JWTOption) (service.TokenIssuer, error) {
	if cfg.SecretKey.Token == "" {
		return nil, errors.Wrap(domainerrors.ErrConfiguration, "jwt signing secret must be provided")
	}

	s := &jwtService{
		secret: []byte(cfg.SecretKey.Token),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Issue creates a signed token naming the user by email, display name, role and id.
func (s *jwtService) Issue(user *entity.User) (string, error) {
	return s.sign(user, "")
}

// IssueConfirmation creates a token carrying the email confirmation purpose.
func (s *jwtService) IssueConfirmation(user *entity.User) (string, error) {
	return s.sign(user, service.PurposeEmailConfirmation)
}

func (s *jwtService) sign(user *entity.User, purpose string) (string, error) {
	if user == nil {
		return "", errors.Wrap(domainerrors.ErrInvalidInput, "user is required to issue a token")
	}

	issuedAt := s.now()
	claims := service.Claims{
		Name:     user.Name,
		Role:     user.Role.String(),
		GroupSID: strconv.FormatInt(user.ID, 10),
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate checks the signature and time claims of an access token.
// Issuer and audience are not checked.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, errors.Errorf("token with purpose %q is not an access token", claims.Purpose)
	}

	return claims, nil
}

// ValidateConfirmation checks the signature and time claims of an email confirmation token.
func (s *jwtService) ValidateConfirmation(tokenString string) (*service.Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != service.PurposeEmailConfirmation {
		return nil, errors.New("token is not an email confirmation token")
	}

	return claims, nil
}

func (s *jwtService) parse(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}

// TTL returns the configured lifetime of issued tokens.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
