package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/integrations/quotes"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/models"
	"github.com/semiha11/Fincio/internal/repository"
	"github.com/semiha11/Fincio/internal/utils/email"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned when registration data is incomplete
	ErrInvalidInput = errors.New("email and a password of at least 6 characters are required")
)

// UserStore persists registered users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// QuoteProvider serves reference prices
type QuoteProvider interface {
	Board(ctx context.Context) quotes.Board
	FindAssetPrice(ctx context.Context, assetType models.AssetType, name string) (float64, bool)
	Refresh(ctx context.Context)
	ClearCache(ctx context.Context) error
}

// Mailer sends notification digests
type Mailer interface {
	SendNotificationDigest(d email.Digest) error
}

// KVFactory opens the local store of one namespace
type KVFactory func(namespace string) ledger.KV

type entry struct {
	mu sync.Mutex
	l  *ledger.Ledger
}

// Service handles business logic
type Service struct {
	users    UserStore
	kv       KVFactory
	mirror   ledger.Mirror
	dispatch ledger.Dispatcher
	quotes   QuoteProvider
	mailer   Mailer
	log      *logrus.Logger
	config   *config.Config
	now      func() time.Time

	mu      sync.Mutex
	ledgers map[string]*entry
}

// Option configures optional collaborators
type Option func(*Service)

// WithMirror enables remote sync for every ledger
func WithMirror(m ledger.Mirror, d ledger.Dispatcher) Option {
	return func(s *Service) {
		s.mirror = m
		s.dispatch = d
	}
}

// WithMailer enables notification digests
func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService initializes a new service
func NewService(users UserStore, kv KVFactory, q QuoteProvider, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		users:   users,
		kv:      kv,
		quotes:  q,
		log:     log,
		config:  cfg,
		now:     time.Now,
		ledgers: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) (*models.User, error) {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") || len(password) < 6 {
		return nil, ErrInvalidInput
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashedPassword),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(strings.ToLower(emailAddr)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.config.JWTTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// Ledger returns the loaded ledger of deviceID, creating it on first use.
// A non-empty userID signs the ledger in, which pulls remote data once.
func (s *Service) Ledger(ctx context.Context, deviceID, userID string) (*ledger.Ledger, error) {
	s.mu.Lock()
	e, ok := s.ledgers[deviceID]
	if !ok {
		e = &entry{l: s.newLedger(deviceID)}
		s.ledgers[deviceID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.l.Loaded() {
		if err := e.l.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load ledger: %w", err)
		}
		s.log.WithField("device", deviceID).Info("Ledger loaded")
	}
	if userID != "" {
		e.l.SignIn(ctx, userID)
	}
	return e.l, nil
}

func (s *Service) newLedger(deviceID string) *ledger.Ledger {
	opts := []ledger.Option{ledger.WithClock(s.now)}
	if s.config.SyncDebounce > 0 {
		opts = append(opts, ledger.WithDebounce(s.config.SyncDebounce))
	}
	if s.mirror != nil && s.dispatch != nil {
		opts = append(opts, ledger.WithMirror(s.mirror, s.dispatch))
	}
	log := s.log.WithField("device", deviceID)
	return ledger.New(s.kv("device:"+deviceID), log, opts...)
}

// SignOut detaches the sync identity from the device's ledger
func (s *Service) SignOut(deviceID string) {
	s.mu.Lock()
	e, ok := s.ledgers[deviceID]
	s.mu.Unlock()
	if !ok {
		return
	}
	e.l.SignOut()
	s.log.WithField("device", deviceID).Info("Signed out")
}

// Quotes returns the quote provider
func (s *Service) Quotes() QuoteProvider {
	return s.quotes
}

// RefreshQuotes warms the quote cache
func (s *Service) RefreshQuotes(ctx context.Context) {
	s.quotes.Refresh(ctx)
	s.log.Debug("Quote cache refreshed")
}

// SendDigests mails unread notifications to every loaded ledger whose
// profile has an email address. It returns the number of digests sent.
func (s *Service) SendDigests(ctx context.Context) int {
	if s.mailer == nil {
		return 0
	}
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.ledgers))
	for _, e := range s.ledgers {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	sent := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		l := e.l
		profile := l.Profile()
		if !l.Loaded() || profile.Email == "" {
			continue
		}
		var unread []models.Notification
		for _, n := range l.Notifications("") {
			if !n.IsRead {
				unread = append(unread, n)
			}
		}
		if len(unread) == 0 {
			continue
		}
		err := s.mailer.SendNotificationDigest(email.Digest{
			To:            profile.Email,
			Name:          profile.Name,
			Notifications: unread,
			Summary:       l.Summary(),
			Formatter:     l.Formatter(),
		})
		if err != nil {
			s.log.WithError(err).WithField("email", profile.Email).Warn("Digest not sent")
			continue
		}
		sent++
	}
	return sent
}

// Schedule registers the quote warm-up and digest jobs
func (s *Service) Schedule(ctx context.Context, c *cron.Cron) error {
	if _, err := c.AddFunc(s.config.QuoteRefreshSpec, func() {
		s.RefreshQuotes(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule quote refresh: %w", err)
	}
	if s.mailer == nil {
		return nil
	}
	if _, err := c.AddFunc(s.config.DigestSpec, func() {
		n := s.SendDigests(ctx)
		s.log.Infof("Sent %d notification digests", n)
	}); err != nil {
		return fmt.Errorf("failed to schedule digests: %w", err)
	}
	return nil
}
