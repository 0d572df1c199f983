package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/config"
	"github.com/dmitrijs2005/gophcourse/internal/server/metrics"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/webhook"
)

// IdentityProvider is the identity-service contract provisioning relies on.
// Create must fail with common.ErrorAlreadyExists rather than produce a
// second identity for the same email.
type IdentityProvider interface {
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	Create(ctx context.Context, email, displayName, password string) (*models.Identity, error)
}

type CredentialVault interface {
	Put(ctx context.Context, identity, credential string, ttl time.Duration) error
}

type AccessGranter interface {
	GrantAccess(ctx context.Context, g models.Grant) (bool, error)
}

type Outcome int

const (
	// OutcomeIgnored is a deliberate no-op for payments that are not paid.
	OutcomeIgnored Outcome = iota
	OutcomeProvisioned
)

type ProvisioningResult struct {
	Outcome      Outcome
	IsNewAccount bool
	AccountID    string
	Email        string
	Status       string
	RedirectURL  string
}

type ProvisioningService struct {
	identities IdentityProvider
	vault      CredentialVault
	accounts   AccessGranter
	logger     logging.Logger
	metrics    *metrics.Metrics

	accepted         []string
	secretTTL        time.Duration
	credentialLength int
	defaultName      string
	redirectPath     string
	timeout          time.Duration

	now                func() time.Time
	generateCredential func(length int) (string, error)
}

func NewProvisioningService(ids IdentityProvider, v CredentialVault, acc AccessGranter, cfg *config.Config, logger logging.Logger, m *metrics.Metrics) *ProvisioningService {
	return &ProvisioningService{
		identities:         ids,
		vault:              v,
		accounts:           acc,
		logger:             logger.With("module", "provisioning"),
		metrics:            m,
		accepted:           cfg.AcceptedStatuses,
		secretTTL:          cfg.SecretTTL,
		credentialLength:   cfg.CredentialLength,
		defaultName:        cfg.DefaultDisplayName,
		redirectPath:       cfg.RedirectPath,
		timeout:            cfg.RequestTimeout,
		now:                time.Now,
		generateCredential: common.GenerateCredential,
	}
}

// HandleEvent provisions access for a payment notification. Re-delivery of
// the same notification is safe: an existing identity takes the existing
// branch and no new credential is vaulted. The access grant is always the
// last write.
func (s *ProvisioningService) HandleEvent(ctx context.Context, raw []byte) (*ProvisioningResult, error) {
	ev, err := webhook.Parse(raw)
	if err != nil {
		s.metrics.WebhookEvent(metrics.WebhookRejected)
		return nil, err
	}
	if ev.Email == "" {
		s.metrics.WebhookEvent(metrics.WebhookRejected)
		return nil, ErrMissingIdentity
	}

	s.logger.Info(ctx, "payment notification", "email", ev.Email, "status", ev.Status)

	if !ev.Paid(s.accepted) {
		s.metrics.WebhookEvent(metrics.WebhookIgnored)
		return &ProvisioningResult{Outcome: OutcomeIgnored, Email: ev.Email, Status: ev.Status}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	name := ev.Name
	if name == "" {
		name = s.defaultName
	}

	uid, isNew, err := s.ensureIdentity(ctx, ev.Email, name)
	if err != nil {
		s.metrics.WebhookEvent(metrics.WebhookFailed)
		s.logger.Error(ctx, "identity provisioning failed", "email", ev.Email, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInternalProvisioning, err)
	}

	inserted, err := s.accounts.GrantAccess(ctx, models.Grant{
		UID:          uid,
		Email:        ev.Email,
		DisplayName:  name,
		AccessLevel:  models.AccessUpgraded,
		CourseStatus: models.CourseActive,
		Now:          s.now(),
	})
	if err != nil {
		s.metrics.WebhookEvent(metrics.WebhookFailed)
		s.logger.Error(ctx, "access grant failed", "email", ev.Email, "uid", uid, "error", err)
		return nil, fmt.Errorf("%w: grant access: %w", ErrInternalProvisioning, err)
	}

	if isNew {
		s.metrics.WebhookEvent(metrics.WebhookProvisionedNew)
	} else {
		s.metrics.WebhookEvent(metrics.WebhookProvisionedExisting)
	}
	s.logger.Info(ctx, "access granted", "email", ev.Email, "uid", uid, "new_identity", isNew, "enrolled", inserted)

	return &ProvisioningResult{
		Outcome:      OutcomeProvisioned,
		IsNewAccount: isNew,
		AccountID:    uid,
		Email:        ev.Email,
		Status:       ev.Status,
		RedirectURL:  s.redirectPath + "?email=" + url.QueryEscape(ev.Email),
	}, nil
}

// ensureIdentity resolves the identity for email, creating it with a fresh
// one-time credential when absent. Losing a creation race to a concurrent
// delivery falls back to the existing branch.
func (s *ProvisioningService) ensureIdentity(ctx context.Context, email, name string) (string, bool, error) {
	existing, err := s.identities.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", false, err
	}

	credential, err := s.generateCredential(s.credentialLength)
	if err != nil {
		return "", false, fmt.Errorf("generate credential: %w", err)
	}

	created, err := s.identities.Create(ctx, email, name, credential)
	if errors.Is(err, common.ErrorAlreadyExists) {
		existing, err := s.identities.GetByEmail(ctx, email)
		if err != nil {
			return "", false, err
		}
		return existing.ID, false, nil
	}
	if err != nil {
		return "", false, err
	}

	if err := s.vault.Put(ctx, email, credential, s.secretTTL); err != nil {
		return "", false, err
	}

	return created.ID, true, nil
}
