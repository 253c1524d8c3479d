package auth

import (
	"context"
	"time"

	"github.com/harun/nanoboard/internal/metrics"
	"github.com/harun/nanoboard/internal/observability"
	"github.com/rs/zerolog"
)

// Login outcomes, used for metrics and audit.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBlocked = "blocked"
)

// Config wires a Service.
type Config struct {
	Password  string
	JWTSecret string
	TokenTTL  time.Duration
	Throttle  ThrottleConfig
}

// Service checks passwords behind the throttle and issues tokens.
type Service struct {
	password string
	issuer   *Issuer
	throttle *Throttle
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewService creates an auth service.
func NewService(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		password: cfg.Password,
		issuer:   NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		throttle: NewThrottle(cfg.Throttle),
		metrics:  m,
		logger:   logger,
	}
}

// Throttle exposes the attempt tracker, e.g. to run its sweeper.
func (s *Service) Throttle() *Throttle {
	return s.throttle
}

// Login runs one attempt for the client key. Blocked keys are rejected
// before the password is looked at.
func (s *Service) Login(ctx context.Context, key, password string) (string, error) {
	if blocked, retry := s.throttle.IsBlocked(key); blocked {
		s.record(ctx, key, OutcomeBlocked)
		return "", &ThrottledError{RetryAfter: retry}
	}
	if s.password == "" {
		return "", ErrNotConfigured
	}

	if !PasswordMatches(s.password, password) {
		blocked, retry := s.throttle.RecordFailure(key)
		s.metrics.SetTrackedClients(s.throttle.Len())
		if blocked {
			s.logger.Warn().Str("client", key).Int("retry_after", retry).Msg("Client blocked after repeated login failures")
		}
		s.record(ctx, key, OutcomeFailure)
		return "", ErrInvalidPassword
	}

	token, err := s.issuer.Issue()
	if err != nil {
		return "", err
	}
	s.throttle.RecordSuccess(key)
	s.metrics.SetTrackedClients(s.throttle.Len())
	s.record(ctx, key, OutcomeSuccess)
	return token, nil
}

// Verify checks a bearer token.
func (s *Service) Verify(token string) (*Claims, error) {
	return s.issuer.Verify(token)
}

func (s *Service) record(ctx context.Context, key, outcome string) {
	s.metrics.RecordLogin(outcome)
	observability.RecordAuthAudit(ctx, outcome, map[string]interface{}{
		"client": key,
	})
}
