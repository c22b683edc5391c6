package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/repository"
	"github.com/spec-kit/ticketapp/internal/validation"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// AuthService coordinates signup, login and logout for a profile.
type AuthService struct {
	*directoryAccess
	bcryptCost int
	latency    time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	DirectoryRepo repository.DirectoryRepository
	SessionRepo   repository.SessionRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         Clock
}

// SignupInput is the raw signup form.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		directoryAccess: newDirectoryAccess(cfg, deps.DirectoryRepo, deps.SessionRepo, deps.Dispatcher, deps.Logger, deps.Clock),
		bcryptCost:      cfg.Auth.BcryptCost,
		latency:         cfg.Auth.SimulatedLatency(),
	}
}

func newDirectoryAccess(cfg config.Config, dir repository.DirectoryRepository, sessions repository.SessionRepository, dispatcher events.Dispatcher, logger *zap.Logger, clock Clock) *directoryAccess {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = utcNow
	}
	retries := cfg.Storage.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &directoryAccess{
		directory:  dir,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      clock,
		maxRetries: retries,
	}
}

// Signup registers a new user and logs them in.
func (s *AuthService) Signup(ctx context.Context, profileID string, in SignupInput) (*domain.Session, error) {
	form := validation.Form{
		validation.FieldName:            in.Name,
		validation.FieldEmail:           in.Email,
		validation.FieldPassword:        in.Password,
		validation.FieldConfirmPassword: in.ConfirmPassword,
	}
	if failures := validation.ValidateForm(form,
		validation.FieldName, validation.FieldEmail, validation.FieldPassword, validation.FieldConfirmPassword,
	); len(failures) > 0 {
		return nil, apperrors.NewValidationError("Please fix the errors in the form", validation.Details(failures))
	}

	if err := sleepCtx(ctx, s.latency); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	email := strings.TrimSpace(in.Email)
	var created domain.User
	err = s.mutate(ctx, profileID, "signup", func(dir *domain.Directory) error {
		if dir.FindByEmail(email) >= 0 {
			return apperrors.NewDuplicateEmail()
		}
		now := s.now()
		created = domain.User{
			ID:        timeDerivedID(now, func(id string) bool { return dir.FindByID(id) >= 0 }),
			Name:      strings.TrimSpace(in.Name),
			Email:     email,
			Password:  hash,
			CreatedAt: now,
		}
		dir.Users = append(dir.Users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(created, s.now())
	if err := s.sessions.Put(ctx, profileID, session); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("profile_id", profileID), zap.String("user_id", created.ID))
	s.publish(ctx, events.Event{Type: events.EventUserSignedUp, ProfileID: profileID, UserID: created.ID})
	return &session, nil
}

// Login authenticates against the profile's directory and replaces its session.
func (s *AuthService) Login(ctx context.Context, profileID, email, password string) (*domain.Session, error) {
	form := validation.Form{validation.FieldEmail: email, validation.FieldPassword: password}
	if failures := validation.ValidateForm(form, validation.FieldEmail, validation.FieldPassword); len(failures) > 0 {
		return nil, apperrors.NewValidationError("Please fix the errors in the form", validation.Details(failures))
	}

	if err := sleepCtx(ctx, s.latency); err != nil {
		return nil, err
	}

	dir, err := s.directory.Load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	idx := dir.FindByEmail(email)
	if idx < 0 || auth.ComparePassword(dir.Users[idx].Password, password) != nil {
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, ProfileID: profileID})
		return nil, apperrors.NewInvalidCredentials()
	}
	user := dir.Users[idx]

	if !auth.IsHashed(user.Password) {
		s.upgradePassword(ctx, profileID, user.ID, password)
	}

	session := domain.NewSession(user, s.now())
	if err := s.sessions.Put(ctx, profileID, session); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, ProfileID: profileID, UserID: user.ID})
	return &session, nil
}

// upgradePassword replaces a plaintext password with its hash. Failure is
// logged and does not fail the login.
func (s *AuthService) upgradePassword(ctx context.Context, profileID, userID, password string) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Warn("hash legacy password", zap.Error(err))
		return
	}
	err = s.mutate(ctx, profileID, "upgrade_password", func(dir *domain.Directory) error {
		idx := dir.FindByID(userID)
		if idx < 0 || auth.IsHashed(dir.Users[idx].Password) {
			return errNoChange
		}
		dir.Users[idx].Password = hash
		return nil
	})
	if err != nil {
		s.logger.Warn("upgrade legacy password", zap.String("profile_id", profileID), zap.Error(err))
		return
	}
	s.logger.Info("upgraded plaintext password", zap.String("profile_id", profileID), zap.String("user_id", userID))
}

// Logout removes the session and the cached ticket view of the profile.
func (s *AuthService) Logout(ctx context.Context, profileID string) error {
	session, err := s.sessions.Get(ctx, profileID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, profileID); err != nil {
		return err
	}
	if err := s.sessions.DeleteTicketView(ctx, profileID); err != nil {
		return err
	}
	if session != nil {
		s.publish(ctx, events.Event{Type: events.EventUserLoggedOut, ProfileID: profileID, UserID: session.ID})
	}
	return nil
}

// IsAuthenticated reports whether the profile has a session.
func (s *AuthService) IsAuthenticated(ctx context.Context, profileID string) (bool, error) {
	session, err := s.sessions.Get(ctx, profileID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// CurrentSession returns the profile's session or NO_ACTIVE_SESSION.
func (s *AuthService) CurrentSession(ctx context.Context, profileID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewNoActiveSession()
	}
	return session, nil
}
