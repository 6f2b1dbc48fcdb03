package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// SettingsOptions are the bootstrap values the settings row is seeded from.
type SettingsOptions struct {
	Defaults    domain.Settings
	SiteURL     string
	CallbackURL string
	CacheTTL    time.Duration
}

// SettingsServiceImpl implements ports.SettingsService.
// Secret keys and the auth token are encrypted before they reach
// PostgreSQL or Redis.
type SettingsServiceImpl struct {
	repo   ports.SettingsRepository
	cache  ports.SettingsCache
	encSvc ports.EncryptionService
	sigSvc ports.SignatureService
	opts   SettingsOptions
	log    zerolog.Logger
}

// NewSettingsService creates a new SettingsServiceImpl.
func NewSettingsService(
	repo ports.SettingsRepository,
	cache ports.SettingsCache,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	opts SettingsOptions,
	log zerolog.Logger,
) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		repo:   repo,
		cache:  cache,
		encSvc: encSvc,
		sigSvc: sigSvc,
		opts:   opts,
		log:    log,
	}
}

// Load returns the current settings: Redis first, then PostgreSQL, seeding
// the row from the bootstrap defaults when none exists yet.
func (s *SettingsServiceImpl) Load(ctx context.Context) (*domain.Settings, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("redis settings lookup failed, falling through to DB")
	}
	if cached != nil {
		return s.open(cached)
	}

	stored, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load settings: %w", err))
	}

	var settings *domain.Settings
	if stored == nil {
		seed := s.opts.Defaults
		settings = &seed
	} else if settings, err = s.open(stored); err != nil {
		return nil, err
	}

	if stored == nil || settings.AuthToken == "" {
		if settings.AuthToken, err = s.sigSvc.CallbackToken(s.opts.SiteURL); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate auth token: %w", err))
		}
		if stored, err = s.persist(ctx, settings); err != nil {
			return nil, err
		}
		s.log.Info().Msg("gateway settings initialised with a new auth token")
	}

	if err := s.cache.Set(ctx, stored, s.opts.CacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache settings in redis")
	}

	return settings, nil
}

// Update applies a partial write and invalidates the cache.
func (s *SettingsServiceImpl) Update(ctx context.Context, upd ports.SettingsUpdate) (*domain.Settings, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	if upd.PaidOrderStatus != nil {
		if _, ok := domain.ParseOrderStatus(string(*upd.PaidOrderStatus)); !ok {
			return nil, apperror.Validation(fmt.Sprintf("unknown order status %q", *upd.PaidOrderStatus))
		}
		settings.PaidOrderStatus = *upd.PaidOrderStatus
	}
	setBool(&settings.Enabled, upd.Enabled)
	setBool(&settings.TestMode, upd.TestMode)
	setBool(&settings.UseLogger, upd.UseLogger)
	setString(&settings.Title, upd.Title)
	setString(&settings.Description, upd.Description)
	applyCredentials(&settings.Live, upd.Live)
	applyCredentials(&settings.Test, upd.Test)

	if _, err := s.persist(ctx, settings); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate cached settings")
	}

	s.log.Info().
		Bool("enabled", settings.Enabled).
		Bool("test_mode", settings.TestMode).
		Bool("required_keys_set", settings.RequiredKeysSet()).
		Msg("gateway settings updated")

	return settings, nil
}

// CallbackURL returns the IPN endpoint with the auth token as query param,
// the value the merchant registers with the provider.
func (s *SettingsServiceImpl) CallbackURL(ctx context.Context) (string, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(s.opts.CallbackURL)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("parse callback url: %w", err))
	}
	q := u.Query()
	q.Set("token", settings.AuthToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// persist seals and saves settings, returning the sealed copy.
func (s *SettingsServiceImpl) persist(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	settings.UpdatedAt = time.Now().UTC()
	sealed, err := s.seal(settings)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sealed); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("save settings: %w", err))
	}
	return sealed, nil
}

func (s *SettingsServiceImpl) seal(in *domain.Settings) (*domain.Settings, error) {
	return s.transform(in, s.encSvc.Encrypt)
}

func (s *SettingsServiceImpl) open(in *domain.Settings) (*domain.Settings, error) {
	return s.transform(in, s.encSvc.Decrypt)
}

func (s *SettingsServiceImpl) transform(in *domain.Settings, fn func(string) (string, error)) (*domain.Settings, error) {
	out := *in
	for _, field := range []*string{&out.Live.SecretKey, &out.Test.SecretKey, &out.AuthToken} {
		if *field == "" {
			continue
		}
		v, err := fn(*field)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
		*field = v
	}
	return &out, nil
}

func applyCredentials(c *domain.Credentials, upd ports.CredentialsUpdate) {
	setString(&c.CID, upd.CID)
	setString(&c.TID, upd.TID)
	setString(&c.SecretKey, upd.SecretKey)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
