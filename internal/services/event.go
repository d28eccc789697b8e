package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"talkboard/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.EventInvitationRepository
	emailService   domain.EmailService
	signIn         domain.SignInService
	publicBaseURL  string
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given ports.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.EventInvitationRepository,
	emailService domain.EmailService,
	signIn domain.SignInService,
	publicBaseURL string,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		emailService:   emailService,
		signIn:         signIn,
		publicBaseURL:  publicBaseURL,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Event{}, err
	}
	if !in.StartDate.Before(in.EndDate) {
		return domain.Event{}, fmt.Errorf("start date must be before end date: %w", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetUser(ctx, in.CreatedBy)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Event{}, fmt.Errorf("creator: %w", domain.ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("get user: %w", err)
	}

	event := domain.NewEvent(in.Name, in.Description, in.TalkRules, in.Location, in.StartDate, in.EndDate, user.ID, s.publicBaseURL, s.clock.Now())
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("save event: %w", err)
	}

	// Second write is not atomic with the first: a failure here leaves the
	// event created but unsaved on the creator's list, which is valid state.
	if err := s.userRepo.SaveUser(ctx, user.SaveEvent(event.ID)); err != nil {
		return domain.Event{}, fmt.Errorf("save user: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID domain.EventID) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID domain.EventID, in domain.UpdateEventInput) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Event{}, err
	}
	if !in.StartDate.Before(in.EndDate) {
		return domain.Event{}, fmt.Errorf("start date must be before end date: %w", domain.ErrInvalidInput)
	}

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return domain.Event{}, fmt.Errorf("only the event creator can update the event: %w", domain.ErrForbidden)
	}

	updated := event.WithDetails(in.Name, in.Description, in.TalkRules, in.Location, in.StartDate, in.EndDate)
	if err := s.eventRepo.Save(ctx, updated); err != nil {
		return domain.Event{}, fmt.Errorf("save event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID domain.EventID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return fmt.Errorf("only the event creator can delete the event: %w", domain.ErrForbidden)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListUserEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.eventRepo.FindByCreator(ctx, currentUser.ID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	byID := lo.KeyBy(created, func(e domain.Event) string { return e.ID.String() })

	events := make([]domain.Event, 0, len(created)+currentUser.SavedEventIDs.Len())
	events = append(events, created...)

	// Saved-event hydration is best effort: a missing or failing lookup is
	// logged and skipped, it never fails the whole listing.
	for _, id := range currentUser.SavedEventIDs.IDs() {
		if _, ok := byID[id.String()]; ok {
			continue
		}
		event, err := s.eventRepo.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("skipping saved event", "event_id", id.String(), "error", err)
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
	return events, nil
}

func (s *eventService) SendEventInvitations(ctx context.Context, eventID domain.EventID, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return 0, nil, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return 0, nil, fmt.Errorf("only the event creator can send invitations: %w", domain.ErrForbidden)
	}

	hostName := strings.TrimSpace(currentUser.DisplayName)
	if hostName == "" {
		hostName = "The event host"
	}

	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  s.clock.Now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			s.logger.Warn("record invitation failed", "email", email, "error", err)
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:     email,
			HostName:  hostName,
			EventName: event.Name,
			EventURL:  event.PublicURL,
			TalkRules: event.TalkRules,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			s.logger.Warn("send invitation failed", "email", email, "error", err)
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
