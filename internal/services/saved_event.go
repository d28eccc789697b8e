package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkboard/internal/domain"
)

type savedEventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	signIn         domain.SignInService
	contextTimeout time.Duration
}

// NewSavedEventService creates a SavedEventService with the given ports.
func NewSavedEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository, signIn domain.SignInService, timeout time.Duration) domain.SavedEventService {
	return &savedEventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		signIn:         signIn,
		contextTimeout: timeout,
	}
}

func (s *savedEventService) SaveEvent(ctx context.Context, eventID domain.EventID) (domain.SaveEventResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.SaveEventResult{}, err
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SaveEventResult{}, domain.ErrNotFound
		}
		return domain.SaveEventResult{}, fmt.Errorf("get event: %w", err)
	}

	// Re-saving is idempotent and skips the write entirely.
	if currentUser.HasEventSaved(eventID) {
		return domain.SaveEventResult{Success: true, AlreadySaved: true}, nil
	}

	if err := s.userRepo.SaveUser(ctx, currentUser.SaveEvent(eventID)); err != nil {
		return domain.SaveEventResult{}, fmt.Errorf("save user: %w", err)
	}
	return domain.SaveEventResult{Success: true, AlreadySaved: false}, nil
}

func (s *savedEventService) RemoveSavedEvent(ctx context.Context, eventID domain.EventID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.userRepo.SaveUser(ctx, currentUser.RemoveSavedEvent(eventID)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
