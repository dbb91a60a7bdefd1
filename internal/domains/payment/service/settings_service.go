package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/repository"
	pkgcache "eurd-payments/pkg/cache"
	"eurd-payments/pkg/logger"
	"eurd-payments/pkg/secret"
)

// =====================================================
// SETTINGS PROVIDER
// =====================================================

// SettingsProvider reads the payment settings row through the cache and
// resolves the merchant API key. It has no gateway dependency so the
// gateway client can use APIKey as its key source.
type SettingsProvider struct {
	repo     repository.SettingsRepository
	cache    pkgcache.Cache
	secrets  secret.Store
	defaults model.Settings
	ttl      time.Duration
}

// NewSettingsProvider: defaults apply until an admin saves settings once
func NewSettingsProvider(
	repo repository.SettingsRepository,
	cache pkgcache.Cache,
	secrets secret.Store,
	defaults model.Settings,
	ttl time.Duration,
) *SettingsProvider {
	return &SettingsProvider{
		repo:     repo,
		cache:    cache,
		secrets:  secrets,
		defaults: defaults,
		ttl:      ttl,
	}
}

// Current returns the stored settings, API key still in stored form
func (p *SettingsProvider) Current(ctx context.Context) (*model.Settings, error) {
	var cached model.Settings
	found, err := p.cache.Get(ctx, model.CacheKeySettings, &cached)
	if err != nil {
		logger.Warn("Settings cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	settings, found, err := p.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		d := p.defaults
		settings = &d
	}

	if err := p.cache.Set(ctx, model.CacheKeySettings, settings, p.ttl); err != nil {
		logger.Warn("Settings cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return settings, nil
}

// APIKey returns the decrypted merchant key, "" when none is configured
func (p *SettingsProvider) APIKey(ctx context.Context) (string, error) {
	settings, err := p.Current(ctx)
	if err != nil {
		return "", err
	}
	if settings.APIKey == "" {
		return "", nil
	}

	key, err := p.secrets.Decrypt(settings.APIKey)
	if err != nil {
		return "", fmt.Errorf("decrypt merchant api key: %w", err)
	}
	return key, nil
}

// Save encrypts a plaintext key before persisting and drops every cached view
func (p *SettingsProvider) Save(ctx context.Context, settings *model.Settings) error {
	if settings.APIKey != "" && !p.secrets.IsEncrypted(settings.APIKey) {
		encrypted, err := p.secrets.Encrypt(settings.APIKey)
		if err != nil {
			return fmt.Errorf("encrypt merchant api key: %w", err)
		}
		settings.APIKey = encrypted
	}

	if err := p.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}

	p.invalidate(ctx, settings.AccountCode)
	return nil
}

func (p *SettingsProvider) invalidate(ctx context.Context, accountCode string) {
	keys := []string{model.CacheKeySettings, model.CacheKeyAccounts}
	if accountCode != "" {
		keys = append(keys, model.CacheKeyAccountEnabled+accountCode)
	}
	if err := p.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Settings cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

// =====================================================
// SETTINGS SERVICE
// =====================================================

type settingsService struct {
	provider      *SettingsProvider
	gateway       gateway.Client
	cache         pkgcache.Cache
	storeCurrency string
	accountsTTL   time.Duration
}

func NewSettingsService(
	provider *SettingsProvider,
	gw gateway.Client,
	cache pkgcache.Cache,
	storeCurrency string,
	accountsTTL time.Duration,
) SettingsService {
	return &settingsService{
		provider:      provider,
		gateway:       gw,
		cache:         cache,
		storeCurrency: strings.ToUpper(storeCurrency),
		accountsTTL:   accountsTTL,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.SettingsResponse, error) {
	settings, err := s.provider.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment settings: %w", err)
	}
	return s.view(ctx, settings), nil
}

// UpdateSettings applies a partial update.
//
// Business Logic Flow:
// 1. Validate request
// 2. Merge onto current settings (an empty api_key keeps the stored key)
// 3. Validate the effective key against Quantoz when it changed or the method is being enabled
// 4. An invalid key is saved with the method disabled and reported as PAY010
func (s *settingsService) UpdateSettings(ctx context.Context, req model.UpdateSettingsRequest) (*model.SettingsResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	current, err := s.provider.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment settings: %w", err)
	}

	// Step 2: Merge
	next := *current
	keyChanged := false
	if req.Enabled != nil {
		next.Enabled = *req.Enabled
	}
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.AccountCode != nil {
		next.AccountCode = strings.TrimSpace(*req.AccountCode)
	}
	if req.APIKey != nil && strings.TrimSpace(*req.APIKey) != "" {
		next.APIKey = strings.TrimSpace(*req.APIKey)
		keyChanged = true
	}

	// Step 3: Validate key
	keyInvalid := false
	enabling := next.Enabled && !current.Enabled
	if next.APIKey != "" && (keyChanged || enabling) {
		plain := next.APIKey
		if !keyChanged {
			if plain, err = s.provider.APIKey(ctx); err != nil {
				return nil, err
			}
		}
		if !s.gateway.ValidateKey(ctx, plain) {
			keyInvalid = true
			next.Enabled = false
		}
	}

	if err := s.provider.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save payment settings: %w", err)
	}
	if current.AccountCode != next.AccountCode {
		s.provider.invalidate(ctx, current.AccountCode)
	}

	logger.Info("EURD payment settings updated", map[string]interface{}{
		"enabled":      next.Enabled,
		"account_code": next.AccountCode,
		"key_changed":  keyChanged,
		"key_invalid":  keyInvalid,
	})

	// Step 4: Report invalid key
	if keyInvalid {
		return nil, model.NewInvalidAPIKeyError()
	}

	return s.view(ctx, &next), nil
}

// ListAccounts returns the merchant accounts behind the configured key (cached)
func (s *settingsService) ListAccounts(ctx context.Context) ([]gateway.Account, error) {
	var accounts []gateway.Account
	if found, _ := s.cache.Get(ctx, model.CacheKeyAccounts, &accounts); found {
		return accounts, nil
	}

	accounts, err := s.gateway.ListAccounts(ctx)
	if err != nil {
		return nil, model.NewGatewayFailureError("list accounts", err)
	}

	if err := s.cache.Set(ctx, model.CacheKeyAccounts, accounts, s.accountsTTL); err != nil {
		logger.Warn("Accounts cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return accounts, nil
}

func (s *settingsService) AccountCode(ctx context.Context) (string, error) {
	settings, err := s.provider.Current(ctx)
	if err != nil {
		return "", err
	}
	return settings.AccountCode, nil
}

// IsAvailable mirrors the checkout availability rules of the method
func (s *settingsService) IsAvailable(ctx context.Context) (bool, string) {
	settings, err := s.provider.Current(ctx)
	if err != nil {
		logger.Error("Failed to load payment settings", err)
		return false, "settings unavailable"
	}
	return s.available(ctx, settings)
}

func (s *settingsService) available(ctx context.Context, settings *model.Settings) (bool, string) {
	switch {
	case !settings.Enabled:
		return false, "payment method is disabled"
	case settings.APIKey == "":
		return false, "merchant API key is not configured"
	case settings.AccountCode == "":
		return false, "merchant account is not configured"
	case s.storeCurrency != model.SupportedCurrency:
		return false, fmt.Sprintf("store currency %s is not supported", s.storeCurrency)
	}

	enabled, err := s.accountEnabled(ctx, settings.AccountCode)
	if err != nil {
		logger.ErrorWithFields("Failed to check merchant account", err, map[string]interface{}{
			"account_code": settings.AccountCode,
		})
		return false, "merchant account status unavailable"
	}
	if !enabled {
		return false, "merchant account is disabled"
	}

	return true, ""
}

func (s *settingsService) accountEnabled(ctx context.Context, accountCode string) (bool, error) {
	key := model.CacheKeyAccountEnabled + accountCode

	var enabled bool
	if found, _ := s.cache.Get(ctx, key, &enabled); found {
		return enabled, nil
	}

	enabled, err := s.gateway.AccountEnabled(ctx, accountCode)
	if err != nil {
		return false, err
	}

	if err := s.cache.Set(ctx, key, enabled, s.accountsTTL); err != nil {
		logger.Warn("Account status cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return enabled, nil
}

func (s *settingsService) view(ctx context.Context, settings *model.Settings) *model.SettingsResponse {
	resp := &model.SettingsResponse{
		Enabled:          settings.Enabled,
		Title:            settings.Title,
		Description:      settings.Description,
		APIKeyConfigured: settings.APIKey != "",
		AccountCode:      settings.AccountCode,
		UpdatedAt:        settings.UpdatedAt,
	}

	if resp.APIKeyConfigured {
		if plain, err := s.provider.secrets.Decrypt(settings.APIKey); err == nil {
			resp.APIKeyHint = maskKey(plain)
		}
	}

	resp.Available, resp.UnavailableReason = s.available(ctx, settings)
	return resp
}

// maskKey keeps the last four characters
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return "****" + key[len(key)-4:]
}
