package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"talkboard/internal/domain"
)

type signInService struct {
	userRepo       domain.UserRepository
	credentialRepo domain.CredentialRepository
	logger         *slog.Logger

	mu       sync.Mutex
	provider domain.SignInProvider
}

// NewSignInService creates a SignInService over the given user and local
// credential stores.
func NewSignInService(userRepo domain.UserRepository, credentialRepo domain.CredentialRepository, logger *slog.Logger) domain.SignInService {
	return &signInService{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		logger:         logger,
	}
}

func (s *signInService) RegisterProvider(provider domain.SignInProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return domain.ErrProviderRegistered
	}
	s.provider = provider
	return nil
}

func (s *signInService) UnregisterProvider() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = nil
}

func (s *signInService) RequireCurrentUser(ctx context.Context) (domain.User, error) {
	user, err := s.userRepo.GetCurrentUser(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrSignInRequired) {
		return domain.User{}, fmt.Errorf("get current user: %w", err)
	}

	s.mu.Lock()
	provider := s.provider
	s.mu.Unlock()
	if provider == nil {
		return domain.User{}, domain.ErrNoSignInProvider
	}

	// Blocks until the external flow resolves; no timeout by design, the
	// caller controls abandonment through ctx.
	ok, err := provider.Request(ctx)
	if err != nil || !ok {
		return domain.User{}, domain.ErrSignInCancelled
	}

	user, err = s.userRepo.GetCurrentUser(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get current user after sign-in: %w", err)
	}
	return user, nil
}

func (s *signInService) SignIn(ctx context.Context) (domain.Credential, error) {
	credential, err := domain.GenerateCredential()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate credential: %w", err)
	}
	if _, err := s.userRepo.SignIn(ctx, credential, true); err != nil {
		return domain.Credential{}, fmt.Errorf("sign in: %w", err)
	}
	if err := s.credentialRepo.Set(ctx, credential); err != nil {
		return domain.Credential{}, fmt.Errorf("store credential: %w", err)
	}
	return credential, nil
}

func (s *signInService) SignInWithCredential(ctx context.Context, codes []string) (domain.User, error) {
	credential, err := domain.NewCredential(codes)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.userRepo.SignIn(ctx, credential, false)
	if err != nil {
		return domain.User{}, fmt.Errorf("sign in with credential: %w", err)
	}
	if err := s.credentialRepo.Set(ctx, credential); err != nil {
		return domain.User{}, fmt.Errorf("store credential: %w", err)
	}
	return user, nil
}

func (s *signInService) SubscribeToCurrentUser(fn func(*domain.User)) (func(), error) {
	return s.userRepo.SubscribeToCurrentUser(fn)
}

func (s *signInService) DeleteAccount(ctx context.Context) error {
	credential, err := s.credentialRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No credential to re-authenticate with means nothing to delete.
			s.logger.Debug("delete account skipped, no stored credential")
			return nil
		}
		return fmt.Errorf("get stored credential: %w", err)
	}
	if err := s.userRepo.DeleteCurrentUser(ctx, credential); err != nil {
		return fmt.Errorf("delete current user: %w", err)
	}
	if err := s.credentialRepo.Delete(ctx); err != nil {
		return fmt.Errorf("delete stored credential: %w", err)
	}
	return nil
}
