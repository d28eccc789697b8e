package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"talkboard/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]domain.Event
	saveCalls int
	saveErr   error
	findErrs  map[string]error // per-id FindByID failures
}

func newFakeEventRepo(events ...domain.Event) *fakeEventRepo {
	r := &fakeEventRepo{byID: make(map[string]domain.Event), findErrs: make(map[string]error)}
	for _, e := range events {
		r.byID[e.ID.String()] = e
	}
	return r
}

func (f *fakeEventRepo) Save(ctx context.Context, e domain.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.byID[e.ID.String()] = e
	return nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id domain.EventID) (domain.Event, error) {
	if err, ok := f.findErrs[id.String()]; ok {
		return domain.Event{}, err
	}
	if e, ok := f.byID[id.String()]; ok {
		return e, nil
	}
	return domain.Event{}, domain.ErrNotFound
}

func (f *fakeEventRepo) FindByCreator(ctx context.Context, userID domain.UserID) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range f.byID {
		if e.IsCreatedBy(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Subscribe(id domain.EventID, fn func(domain.Event)) (func(), error) {
	return func() {}, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id domain.EventID) error {
	if _, ok := f.byID[id.String()]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id.String())
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]domain.User
	current   *domain.User
	saveCalls int
	saveErr   error
	signInErr error
	deleted   bool
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: make(map[string]domain.User)}
	for _, u := range users {
		r.byID[u.ID.String()] = u
	}
	return r
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	if u, ok := f.byID[id.String()]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) GetCurrentUser(ctx context.Context) (domain.User, error) {
	if f.current == nil {
		return domain.User{}, domain.ErrSignInRequired
	}
	return *f.current, nil
}

func (f *fakeUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.byID[user.ID.String()] = user
	if f.current != nil && f.current.ID.Equal(user.ID) {
		f.current = &user
	}
	return nil
}

func (f *fakeUserRepo) SubscribeToCurrentUser(fn func(*domain.User)) (func(), error) {
	return func() {}, nil
}

func (f *fakeUserRepo) SignIn(ctx context.Context, credential domain.Credential, createIfMissing bool) (domain.User, error) {
	if f.signInErr != nil {
		return domain.User{}, f.signInErr
	}
	if f.current == nil {
		user := domain.NewUser(domain.GenerateUserID(), "")
		f.byID[user.ID.String()] = user
		f.current = &user
	}
	return *f.current, nil
}

func (f *fakeUserRepo) SignOut(ctx context.Context) error {
	f.current = nil
	return nil
}

func (f *fakeUserRepo) DeleteCurrentUser(ctx context.Context, credential domain.Credential) error {
	f.deleted = true
	f.current = nil
	return nil
}

// fakeCredentialRepo is an in-memory CredentialRepository for tests.
type fakeCredentialRepo struct {
	stored *domain.Credential
}

func (f *fakeCredentialRepo) Get(ctx context.Context) (domain.Credential, error) {
	if f.stored == nil {
		return domain.Credential{}, domain.ErrNotFound
	}
	return *f.stored, nil
}

func (f *fakeCredentialRepo) Set(ctx context.Context, credential domain.Credential) error {
	f.stored = &credential
	return nil
}

func (f *fakeCredentialRepo) Create(ctx context.Context) (domain.Credential, error) {
	credential, err := domain.GenerateCredential()
	if err != nil {
		return domain.Credential{}, err
	}
	f.stored = &credential
	return credential, nil
}

func (f *fakeCredentialRepo) Delete(ctx context.Context) error {
	f.stored = nil
	return nil
}

// fakeRoomRepo is an in-memory RoomRepository for tests.
type fakeRoomRepo struct {
	byID      map[string]domain.Room
	saveCalls int
}

func newFakeRoomRepo(rooms ...domain.Room) *fakeRoomRepo {
	r := &fakeRoomRepo{byID: make(map[string]domain.Room)}
	for _, room := range rooms {
		r.byID[room.ID.String()] = room
	}
	return r
}

func (f *fakeRoomRepo) Save(ctx context.Context, room domain.Room) error {
	f.saveCalls++
	f.byID[room.ID.String()] = room
	return nil
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	if room, ok := f.byID[id.String()]; ok {
		return room, nil
	}
	return domain.Room{}, domain.ErrNotFound
}

func (f *fakeRoomRepo) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Room, error) {
	var out []domain.Room
	for _, room := range f.byID {
		if room.EventID.Equal(eventID) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) Delete(ctx context.Context, id domain.RoomID) error {
	if _, ok := f.byID[id.String()]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id.String())
	return nil
}

// fakeLocationRepo is an in-memory LocationRepository for tests.
type fakeLocationRepo struct {
	byID      map[string]domain.Location
	saveCalls int
}

func newFakeLocationRepo(locations ...domain.Location) *fakeLocationRepo {
	r := &fakeLocationRepo{byID: make(map[string]domain.Location)}
	for _, l := range locations {
		r.byID[l.ID.String()] = l
	}
	return r
}

func (f *fakeLocationRepo) Save(ctx context.Context, location domain.Location) error {
	f.saveCalls++
	f.byID[location.ID.String()] = location
	return nil
}

func (f *fakeLocationRepo) FindByID(ctx context.Context, id domain.LocationID) (domain.Location, error) {
	if l, ok := f.byID[id.String()]; ok {
		return l, nil
	}
	return domain.Location{}, domain.ErrNotFound
}

func (f *fakeLocationRepo) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Location, error) {
	var out []domain.Location
	for _, l := range f.byID {
		if l.EventID.Equal(eventID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLocationRepo) Delete(ctx context.Context, id domain.LocationID) error {
	if _, ok := f.byID[id.String()]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id.String())
	return nil
}

// fakeTalkRepo is an in-memory TalkRepository for tests. Talks keep insertion
// order so stable-sort assertions are meaningful.
type fakeTalkRepo struct {
	talks     []domain.Talk
	saveCalls int
	saveErr   error
}

func newFakeTalkRepo(talks ...domain.Talk) *fakeTalkRepo {
	return &fakeTalkRepo{talks: talks}
}

func (f *fakeTalkRepo) Save(ctx context.Context, talk domain.Talk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	for i, existing := range f.talks {
		if existing.ID.Equal(talk.ID) {
			f.talks[i] = talk
			return nil
		}
	}
	f.talks = append(f.talks, talk)
	return nil
}

func (f *fakeTalkRepo) FindByID(ctx context.Context, id domain.TalkID) (domain.Talk, error) {
	for _, talk := range f.talks {
		if talk.ID.Equal(id) {
			return talk, nil
		}
	}
	return domain.Talk{}, domain.ErrNotFound
}

func (f *fakeTalkRepo) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Talk, error) {
	var out []domain.Talk
	for _, talk := range f.talks {
		if talk.EventID.Equal(eventID) {
			out = append(out, talk)
		}
	}
	return out, nil
}

func (f *fakeTalkRepo) FindByEventIDAndStatus(ctx context.Context, eventID domain.EventID, status domain.TalkStatus) ([]domain.Talk, error) {
	var out []domain.Talk
	for _, talk := range f.talks {
		if talk.EventID.Equal(eventID) && talk.Status == status {
			out = append(out, talk)
		}
	}
	return out, nil
}

func (f *fakeTalkRepo) SubscribeByEventID(eventID domain.EventID, fn func([]domain.Talk)) (func(), error) {
	return func() {}, nil
}

func (f *fakeTalkRepo) Delete(ctx context.Context, id domain.TalkID) error {
	for i, talk := range f.talks {
		if talk.ID.Equal(id) {
			f.talks = append(f.talks[:i], f.talks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeInvitationRepo is an in-memory EventInvitationRepository for tests.
type fakeInvitationRepo struct {
	created   []*domain.EventInvitation
	createErr error
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.EventInvitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, inv)
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID domain.EventID) ([]*domain.EventInvitation, error) {
	var out []*domain.EventInvitation
	for _, inv := range f.created {
		if inv.EventID.Equal(eventID) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// fakeEmailService records sent invitations and can fail per address.
type fakeEmailService struct {
	sent    []*domain.EventInvitationEmailData
	failFor map[string]error
}

func (f *fakeEmailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	if err, ok := f.failFor[data.Email]; ok {
		return err
	}
	f.sent = append(f.sent, data)
	return nil
}

// stubSignIn is a SignInService that returns a fixed user or error from
// RequireCurrentUser. The remaining methods are unused by the services under test.
type stubSignIn struct {
	user domain.User
	err  error
}

func (s *stubSignIn) RegisterProvider(domain.SignInProvider) error { return nil }
func (s *stubSignIn) UnregisterProvider()                          {}

func (s *stubSignIn) RequireCurrentUser(ctx context.Context) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	return s.user, nil
}

func (s *stubSignIn) SignIn(ctx context.Context) (domain.Credential, error) {
	return domain.Credential{}, nil
}

func (s *stubSignIn) SignInWithCredential(ctx context.Context, codes []string) (domain.User, error) {
	return s.user, nil
}

func (s *stubSignIn) SubscribeToCurrentUser(fn func(*domain.User)) (func(), error) {
	return func() {}, nil
}

func (s *stubSignIn) DeleteAccount(ctx context.Context) error { return nil }
