package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkboard/internal/domain"
)

type locationService struct {
	locationRepo   domain.LocationRepository
	eventRepo      domain.EventRepository
	signIn         domain.SignInService
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewLocationService creates a LocationService with the given ports.
func NewLocationService(locationRepo domain.LocationRepository, eventRepo domain.EventRepository, signIn domain.SignInService, clock domain.Clock, timeout time.Duration) domain.LocationService {
	return &locationService{
		locationRepo:   locationRepo,
		eventRepo:      eventRepo,
		signIn:         signIn,
		clock:          clock,
		contextTimeout: timeout,
	}
}

// requireEventCreator loads the event and verifies the current user created it.
func (s *locationService) requireEventCreator(ctx context.Context, eventID domain.EventID, action string) (domain.User, domain.Event, error) {
	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.User{}, domain.Event{}, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.Event{}, domain.ErrNotFound
		}
		return domain.User{}, domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return domain.User{}, domain.Event{}, fmt.Errorf("only the event creator can %s locations: %w", action, domain.ErrForbidden)
	}
	return currentUser, event, nil
}

func (s *locationService) CreateLocation(ctx context.Context, eventID domain.EventID, in domain.LocationInput) (domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Location{}, err
	}
	currentUser, _, err := s.requireEventCreator(ctx, eventID, "create")
	if err != nil {
		return domain.Location{}, err
	}

	location := domain.NewLocation(eventID, in.Name, in.Description, currentUser.ID, s.clock.Now())
	if err := s.locationRepo.Save(ctx, location); err != nil {
		return domain.Location{}, fmt.Errorf("save location: %w", err)
	}
	return location, nil
}

func (s *locationService) UpdateLocation(ctx context.Context, eventID domain.EventID, locationID domain.LocationID, in domain.LocationInput) (domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Location{}, err
	}
	if _, _, err := s.requireEventCreator(ctx, eventID, "update"); err != nil {
		return domain.Location{}, err
	}
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	if !location.BelongsTo(eventID) {
		return domain.Location{}, domain.ErrNotFound
	}

	updated := location.WithDetails(in.Name, in.Description)
	if err := s.locationRepo.Save(ctx, updated); err != nil {
		return domain.Location{}, fmt.Errorf("save location: %w", err)
	}
	return updated, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, eventID domain.EventID, locationID domain.LocationID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.requireEventCreator(ctx, eventID, "delete"); err != nil {
		return err
	}
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get location: %w", err)
	}
	if !location.BelongsTo(eventID) {
		return domain.ErrNotFound
	}
	if err := s.locationRepo.Delete(ctx, locationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}

func (s *locationService) ListEventLocations(ctx context.Context, eventID domain.EventID) ([]domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	locations, err := s.locationRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if locations == nil {
		locations = []domain.Location{}
	}
	return locations, nil
}
