package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const defaultTTL = 2 * time.Hour

// Claims carried by a session token.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Store keeps live sessions in memory. A session is dropped when it is ended
// or when its TTL runs out; nothing is shared between sessions.
type Store struct {
	logger *slog.Logger
	cfg    config.SessionConfig
	cache  *cache.Cache
	secret []byte
}

func NewStore(cfg config.SessionConfig, logger *slog.Logger) (*Store, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("session secret key cannot be empty")
	}
	if cfg.SecretKey == config.PlaceholderSessionSecret {
		logger.Warn("Session tokens are signed with the placeholder secret; set SESSION_SECRET_KEY")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	c := cache.New(cfg.TTL, cfg.TTL/2)
	c.OnEvicted(func(key string, _ interface{}) {
		metrics.Get().ActiveSessions.Add(context.Background(), -1)
		logger.Debug("Session evicted", slog.String("session_id", key))
	})
	return &Store{
		logger: logger,
		cfg:    cfg,
		cache:  c,
		secret: []byte(cfg.SecretKey),
	}, nil
}

// Create opens a session and signs a token for it.
func (s *Store) Create(ctx context.Context) (*Session, string, error) {
	sess := newSession(uuid.New(), time.Now(), s.cfg.TTL)
	token, err := s.issueToken(sess)
	if err != nil {
		return nil, "", err
	}
	s.cache.Set(sess.ID.String(), sess, cache.DefaultExpiration)
	metrics.Get().ActiveSessions.Add(ctx, 1)
	s.logger.InfoContext(ctx, "Session created", slog.String("session_id", sess.ID.String()))
	return sess, token, nil
}

func (s *Store) Get(id uuid.UUID) (*Session, error) {
	v, found := s.cache.Get(id.String())
	if !found {
		return nil, types.ErrSessionNotFound
	}
	return v.(*Session), nil
}

// End discards the session. Ending an unknown session is ErrSessionNotFound.
func (s *Store) End(ctx context.Context, id uuid.UUID) error {
	if _, found := s.cache.Get(id.String()); !found {
		return types.ErrSessionNotFound
	}
	s.cache.Delete(id.String())
	s.logger.InfoContext(ctx, "Session ended", slog.String("session_id", id.String()))
	return nil
}

func (s *Store) Count() int { return s.cache.ItemCount() }

// Resolve validates a token and returns the live session it names.
func (s *Store) Resolve(tokenString string) (*Session, error) {
	id, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *Store) issueToken(sess *Session) (string, error) {
	claims := Claims{
		SessionID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   sess.ID.String(),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			ID:        uuid.NewString(),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken checks signature, expiry, issuer and audience and returns the
// session id. Every failure wraps ErrSessionNotFound.
func (s *Store) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", types.ErrSessionNotFound, err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", types.ErrSessionNotFound)
	}
	if !api.VerifyAudience(claims.Audience, s.cfg.Audience) {
		return uuid.Nil, fmt.Errorf("%w: audience mismatch", types.ErrSessionNotFound)
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad session id: %v", types.ErrSessionNotFound, err)
	}
	return id, nil
}
