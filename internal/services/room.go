package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkboard/internal/domain"
)

type roomService struct {
	roomRepo       domain.RoomRepository
	eventRepo      domain.EventRepository
	signIn         domain.SignInService
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewRoomService creates a RoomService with the given ports.
func NewRoomService(roomRepo domain.RoomRepository, eventRepo domain.EventRepository, signIn domain.SignInService, clock domain.Clock, timeout time.Duration) domain.RoomService {
	return &roomService{
		roomRepo:       roomRepo,
		eventRepo:      eventRepo,
		signIn:         signIn,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, eventID domain.EventID, in domain.RoomInput) (domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Room{}, err
	}
	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Room{}, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return domain.Room{}, fmt.Errorf("only the event creator can create rooms: %w", domain.ErrForbidden)
	}

	room := domain.NewRoom(eventID, in.Name, in.Description, currentUser.ID, s.clock.Now())
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("save room: %w", err)
	}
	return room, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, eventID domain.EventID, roomID domain.RoomID, in domain.RoomInput) (domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return domain.Room{}, err
	}
	currentUser, err := s.signIn.RequireCurrentUser(ctx)
	if err != nil {
		return domain.Room{}, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsCreatedBy(currentUser.ID) {
		return domain.Room{}, fmt.Errorf("only the event creator can update rooms: %w", domain.ErrForbidden)
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get room: %w", err)
	}
	if !room.EventID.Equal(eventID) {
		return domain.Room{}, domain.ErrNotFound
	}

	updated := room.WithDetails(in.Name, in.Description)
	if err := s.roomRepo.Save(ctx, updated); err != nil {
		return domain.Room{}, fmt.Errorf("save room: %w", err)
	}
	return updated, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, eventID domain.EventID, roomID domain.RoomID) error {
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
		return fmt.Errorf("only the event creator can delete rooms: %w", domain.ErrForbidden)
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get room: %w", err)
	}
	if !room.EventID.Equal(eventID) {
		return domain.ErrNotFound
	}
	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

func (s *roomService) ListEventRooms(ctx context.Context, eventID domain.EventID) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	rooms, err := s.roomRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}
