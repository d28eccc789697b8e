package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"talkboard/internal/domain"
)

type talkService struct {
	talkRepo       domain.TalkRepository
	eventRepo      domain.EventRepository
	locationRepo   domain.LocationRepository
	signIn         domain.SignInService
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewTalkService creates a TalkService with the given ports.
func NewTalkService(talkRepo domain.TalkRepository, eventRepo domain.EventRepository, locationRepo domain.LocationRepository, signIn domain.SignInService, clock domain.Clock, timeout time.Duration) domain.TalkService {
	return &talkService{
		talkRepo:       talkRepo,
		eventRepo:      eventRepo,
		locationRepo:   locationRepo,
		signIn:         signIn,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *talkService) SubmitTalk(ctx context.Context, in domain.SubmitTalkInput) (domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Talk{}, err
	}
	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Talk{}, err
	}
	if _, err := s.eventRepo.FindByID(ctx, in.EventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Talk{}, fmt.Errorf("event: %w", domain.ErrNotFound)
		}
		return domain.Talk{}, fmt.Errorf("get event: %w", err)
	}
	location, err := s.locationRepo.FindByID(ctx, in.LocationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Talk{}, fmt.Errorf("location: %w", domain.ErrNotFound)
		}
		return domain.Talk{}, fmt.Errorf("get location: %w", err)
	}
	// No foreign keys exist across repositories, so cross-entity integrity is
	// checked here.
	if !location.BelongsTo(in.EventID) {
		return domain.Talk{}, fmt.Errorf("location does not belong to the event: %w", domain.ErrInvalidInput)
	}

	talk := domain.NewTalk(in.EventID, currentUser.ID, in.Name, in.Pitch, in.ProposedStart, in.LocationID, s.clock.Now())
	if err := s.talkRepo.Save(ctx, talk); err != nil {
		return domain.Talk{}, fmt.Errorf("save talk: %w", err)
	}
	return talk, nil
}

func (s *talkService) UpdateTalk(ctx context.Context, talkID domain.TalkID, update domain.TalkUpdate) (domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Talk{}, err
	}
	talk, err := s.talkRepo.FindByID(ctx, talkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Talk{}, domain.ErrNotFound
		}
		return domain.Talk{}, fmt.Errorf("get talk: %w", err)
	}
	if !talk.IsProposedBy(currentUser.ID) {
		return domain.Talk{}, fmt.Errorf("you can only edit your own talks: %w", domain.ErrForbidden)
	}
	if update.LocationID != nil {
		location, err := s.locationRepo.FindByID(ctx, *update.LocationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Talk{}, fmt.Errorf("location: %w", domain.ErrNotFound)
			}
			return domain.Talk{}, fmt.Errorf("get location: %w", err)
		}
		if !location.BelongsTo(talk.EventID) {
			return domain.Talk{}, fmt.Errorf("location does not belong to the event: %w", domain.ErrInvalidInput)
		}
	}

	updated := talk.ApplyUpdate(update)
	if err := s.talkRepo.Save(ctx, updated); err != nil {
		return domain.Talk{}, fmt.Errorf("save talk: %w", err)
	}
	return updated, nil
}

// requireTalkEventCreator loads the talk and its event and verifies the current
// user created the event. Approval authority follows the room-mutation pattern.
func (s *talkService) requireTalkEventCreator(ctx context.Context, talkID domain.TalkID, action string) (domain.Talk, error) {
	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Talk{}, err
	}
	talk, err := s.talkRepo.FindByID(ctx, talkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Talk{}, domain.ErrNotFound
		}
		return domain.Talk{}, fmt.Errorf("get talk: %w", err)
	}
	event, err := s.eventRepo.FindByID(ctx, talk.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Talk{}, fmt.Errorf("event: %w", domain.ErrNotFound)
		}
		return domain.Talk{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return domain.Talk{}, fmt.Errorf("only the event creator can %s talks: %w", action, domain.ErrForbidden)
	}
	return talk, nil
}

func (s *talkService) ApproveTalk(ctx context.Context, talkID domain.TalkID, at *time.Time) (domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.requireTalkEventCreator(ctx, talkID, "approve")
	if err != nil {
		return domain.Talk{}, err
	}
	approved, err := talk.Approve(at)
	if err != nil {
		return domain.Talk{}, err
	}
	if err := s.talkRepo.Save(ctx, approved); err != nil {
		return domain.Talk{}, fmt.Errorf("save talk: %w", err)
	}
	return approved, nil
}

func (s *talkService) RejectTalk(ctx context.Context, talkID domain.TalkID) (domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.requireTalkEventCreator(ctx, talkID, "reject")
	if err != nil {
		return domain.Talk{}, err
	}
	rejected, err := talk.Reject()
	if err != nil {
		return domain.Talk{}, err
	}
	if err := s.talkRepo.Save(ctx, rejected); err != nil {
		return domain.Talk{}, fmt.Errorf("save talk: %w", err)
	}
	return rejected, nil
}

func (s *talkService) GetEventSchedule(ctx context.Context, eventID domain.EventID, includeAll bool) ([]domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var talks []domain.Talk
	var err error
	if includeAll {
		talks, err = s.talkRepo.FindByEventID(ctx, eventID)
	} else {
		talks, err = s.talkRepo.FindByEventIDAndStatus(ctx, eventID, domain.TalkStatusApproved)
	}
	if err != nil {
		return nil, fmt.Errorf("list talks: %w", err)
	}

	locations, err := s.locationRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	locationsByID := lo.KeyBy(locations, func(l domain.Location) string { return l.ID.String() })

	entries := make([]domain.ScheduleEntry, 0, len(talks))
	for _, talk := range talks {
		location, ok := locationsByID[talk.LocationID.String()]
		if !ok {
			// Location was deleted after submission; the talk has nowhere to
			// appear, drop it.
			continue
		}
		entries = append(entries, domain.ScheduleEntry{Talk: talk, Location: location})
	}

	// Stable: talks with equal start times keep their repository order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Talk.EffectiveStart().Before(entries[j].Talk.EffectiveStart())
	})
	return entries, nil
}
