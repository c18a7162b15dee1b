package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/metrics"
	"go.uber.org/zap"
)

// RegistrationRequest is a validated registration
type RegistrationRequest struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	PortraitFilename string
	Portrait         []byte
	CreatedBy        string
}

// Registrar creates users together with their face encoding
type Registrar struct {
	users     database.UserWriter
	portraits PortraitStore
	encoder   Encoder
	runner    Runner
	log       *zap.Logger

	// OnOutcome is called once per registration attempt
	OnOutcome OutcomeFunc
}

// NewRegistrar creates a registrar
func NewRegistrar(users database.UserWriter, portraits PortraitStore, encoder Encoder, runner Runner, log *zap.Logger) *Registrar {
	return &Registrar{
		users:     users,
		portraits: portraits,
		encoder:   encoder,
		runner:    runner,
		log:       log,
	}
}

// Register stores the portrait, encodes it and creates the user with its encoding.
// Either the user, its encoding and the portrait file all exist afterwards, or none do.
func (r *Registrar) Register(ctx context.Context, req RegistrationRequest) (*database.User, error) {
	var user *database.User
	err := r.runner.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = r.register(ctx, req)
		return err
	})
	r.OnOutcome.record(registrationOutcome(err))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Registrar) register(ctx context.Context, req RegistrationRequest) (*database.User, error) {
	email := strings.TrimSpace(req.Email)

	exists, err := r.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	name, err := r.portraits.Save(req.PortraitFilename, bytes.NewReader(req.Portrait))
	if err != nil {
		return nil, storageError(err)
	}
	log := r.log.With(zap.String("email", email), zap.String("portrait", name))

	// discard removes the portrait of a registration that did not complete.
	discard := func() {
		if err := r.portraits.Remove(name); err != nil {
			log.Warn("Failed to remove portrait of failed registration", zap.Error(err))
		}
	}

	data, err := r.portraits.Read(name)
	if err != nil {
		discard()
		return nil, storageError(err)
	}

	encoding, err := r.encoder.Encode(ctx, data)
	if err != nil {
		discard()
		return nil, encodingError(err)
	}
	if encoding == nil {
		discard()
		return nil, encodingError(ErrNoFaceFound)
	}

	user := &database.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PortraitPath: filepath.ToSlash(r.portraits.Path(name)),
		IsActive:     true,
		CreatedBy:    req.CreatedBy,
		UpdatedBy:    req.CreatedBy,
	}
	if err := r.users.CreateWithEncoding(ctx, user, encoding); err != nil {
		discard()
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCreated
	case errors.Is(err, ErrDuplicateEmail):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrNoFaceFound):
		return metrics.OutcomeNoFace
	}
	return metrics.OutcomeError
}
