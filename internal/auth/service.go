// Package auth runs the login flows: it validates the form, asks the backend for a
// credential and hands the result to the session manager.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/backend"
	"github.com/lachlan2k/labour-console/internal/geocode"
	"github.com/lachlan2k/labour-console/internal/session"
	"github.com/lachlan2k/labour-console/internal/storage"
)

// KeyRememberedPhone is not a session key, so Logout leaves it in place; it only
// pre-fills the contractor login form. Unticking "remember me" on the next login
// removes it.
const KeyRememberedPhone = "rememberedPhone"

const fallbackLoginMessage = "Login failed. Please try again."

var (
	ErrMissingFields    = errors.New("Please fill in all fields")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrMissingPushToken = errors.New("push token must not be empty")
)

// LoginError is a failed login, carrying the message to show on the login form.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

func loginError(err error) *LoginError {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &LoginError{Message: apiErr.Message, Err: err}
	}
	return &LoginError{Message: fallbackLoginMessage, Err: err}
}

type Backend interface {
	AdminLogin(ctx context.Context, creds backend.AdminCredentials) (*backend.LoginResult, error)
	ContractorLogin(ctx context.Context, creds backend.ContractorCredentials) (*backend.LoginResult, error)
	UpdatePushToken(ctx context.Context, token, fcmToken string) error
}

type Geocoder interface {
	Lookup(ctx context.Context, address string) (*geocode.Location, error)
}

type Service struct {
	backend  Backend
	sessions *session.Manager
	kv       storage.KV
	geocoder Geocoder
	logger   *zap.Logger
}

// NewService wires the login flows. geocoder may be nil when no geocoding key is configured.
func NewService(b Backend, sessions *session.Manager, kv storage.KV, geocoder Geocoder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:  b,
		sessions: sessions,
		kv:       kv,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (s *Service) AdminLogin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}

	res, err := s.backend.AdminLogin(ctx, backend.AdminCredentials{Email: email, Password: password})
	if err != nil {
		s.logger.Info("admin login rejected", zap.String("email", email), zap.Error(err))
		return loginError(err)
	}

	return s.sessions.Login(ctx, session.RoleAdmin, res.Token, "")
}

type ContractorLogin struct {
	PhoneNumber string
	Password    string
	Latitude    *float64
	Longitude   *float64
	// Address is geocoded when no coordinates are given
	Address    string
	RememberMe bool
}

func (s *Service) ContractorLogin(ctx context.Context, in ContractorLogin) error {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.PhoneNumber == "" || in.Password == "" {
		return ErrMissingFields
	}

	creds := backend.ContractorCredentials{
		PhoneNumber: in.PhoneNumber,
		Password:    in.Password,
	}
	if in.Latitude != nil && in.Longitude != nil {
		creds.Latitude, creds.Longitude = in.Latitude, in.Longitude
	} else if in.Address != "" {
		creds.Latitude, creds.Longitude = s.locate(ctx, in.Address)
	}

	res, err := s.backend.ContractorLogin(ctx, creds)
	if err != nil {
		s.logger.Info("contractor login rejected", zap.String("phone", in.PhoneNumber), zap.Error(err))
		return loginError(err)
	}

	if err := s.sessions.Login(ctx, session.RoleVendor, res.Token, ""); err != nil {
		return err
	}

	s.rememberPhone(ctx, in.PhoneNumber, in.RememberMe)
	return nil
}

// locate is best effort: location is optional for login, so failures only get logged
func (s *Service) locate(ctx context.Context, address string) (*float64, *float64) {
	if s.geocoder == nil {
		s.logger.Warn("address given but geocoding is not configured, logging in without location")
		return nil, nil
	}
	loc, err := s.geocoder.Lookup(ctx, address)
	if err != nil {
		s.logger.Warn("location not available", zap.String("address", address), zap.Error(err))
		return nil, nil
	}
	return &loc.Latitude, &loc.Longitude
}

func (s *Service) rememberPhone(ctx context.Context, phone string, remember bool) {
	var err error
	if remember {
		err = s.kv.Set(ctx, KeyRememberedPhone, phone)
	} else {
		err = s.kv.Delete(ctx, KeyRememberedPhone)
	}
	if err != nil {
		s.logger.Warn("couldn't update remembered phone number", zap.Error(err))
	}
}

// RememberedPhone returns the phone number saved by a previous "remember me" login.
func (s *Service) RememberedPhone(ctx context.Context) (string, bool) {
	phone, ok, err := s.kv.Get(ctx, KeyRememberedPhone)
	if err != nil {
		s.logger.Warn("couldn't read remembered phone number", zap.Error(err))
		return "", false
	}
	return phone, ok
}

// RegisterPushToken forwards a push notification token for the current session.
func (s *Service) RegisterPushToken(ctx context.Context, fcmToken string) error {
	if strings.TrimSpace(fcmToken) == "" {
		return ErrMissingPushToken
	}
	st := s.sessions.State()
	if !st.Authenticated() {
		return ErrNotLoggedIn
	}
	return s.backend.UpdatePushToken(ctx, st.Token, fcmToken)
}
