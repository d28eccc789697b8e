// Package app wires configuration, storage, and services into a running core.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/lib/pq"

	"talkboard/config"
	"talkboard/internal/adapters/auth"
	"talkboard/internal/adapters/email"
	"talkboard/internal/domain"
	"talkboard/internal/repository/local"
	"talkboard/internal/repository/postgres"
	"talkboard/internal/services"
)

const contextTimeout = 5 * time.Second

// App holds the assembled services and the resources behind them.
type App struct {
	Events      domain.EventService
	Rooms       domain.RoomService
	Locations   domain.LocationService
	Talks       domain.TalkService
	SavedEvents domain.SavedEventService
	SignIn      domain.SignInService
	Profiles    domain.ProfileRepository

	db         *sql.DB
	localStore *badger.DB
	notifier   *postgres.Notifier
	logger     *slog.Logger
}

// New builds the application from config. Close releases the database
// connections and the local credential store.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	notifier, err := postgres.NewNotifier(cfg.DBUrl, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("start notifier: %w", err)
	}

	localStore, err := local.Open(cfg.CredentialDir)
	if err != nil {
		notifier.Close()
		db.Close()
		return nil, fmt.Errorf("open local store: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		localStore.Close()
		notifier.Close()
		db.Close()
		return nil, fmt.Errorf("create mailer: %w", err)
	}

	hasher := auth.NewBcryptHasher(12)
	tokens := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	sessionTTL := time.Duration(cfg.JWTExpiryHours) * time.Hour

	eventRepo := postgres.NewEventRepository(db, notifier)
	userRepo := postgres.NewUserRepository(db, hasher, tokens, verifier, sessionTTL, logger)
	roomRepo := postgres.NewRoomRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	talkRepo := postgres.NewTalkRepository(db, notifier)
	profileRepo := postgres.NewProfileRepository(db, notifier)
	invitationRepo := postgres.NewEventInvitationRepository(db)
	credentialRepo := local.NewCredentialRepository(localStore)

	clock := domain.SystemClock{}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	signIn := services.NewSignInService(userRepo, credentialRepo, logger)

	return &App{
		Events:      services.NewEventService(eventRepo, userRepo, invitationRepo, emailService, signIn, cfg.PublicBaseURL, clock, logger, contextTimeout),
		Rooms:       services.NewRoomService(roomRepo, eventRepo, signIn, clock, contextTimeout),
		Locations:   services.NewLocationService(locationRepo, eventRepo, signIn, clock, contextTimeout),
		Talks:       services.NewTalkService(talkRepo, eventRepo, locationRepo, signIn, clock, contextTimeout),
		SavedEvents: services.NewSavedEventService(eventRepo, userRepo, signIn, contextTimeout),
		SignIn:      signIn,
		Profiles:    profileRepo,
		db:          db,
		localStore:  localStore,
		notifier:    notifier,
		logger:      logger,
	}, nil
}

// Close releases all resources. Safe to call once.
func (a *App) Close() error {
	var firstErr error
	if err := a.notifier.Close(); err != nil {
		firstErr = err
	}
	if err := a.localStore.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
