package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicore/models"
	"clinicore/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore is the cross-step store: the single place the wizard's
// accumulated answers live between steps. Each section has its own typed
// setter so a raw upload handle can never be patched into the aggregate.
type SessionStore struct {
	kv  KVStore
	ttl time.Duration
}

// NewSessionStore creates a session store over the given KV backend. Every
// write refreshes the TTL, so an active wizard never expires mid-flow.
func NewSessionStore(kv KVStore, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return utils.SessionKeyPrefix + sessionID
}

// Create starts a fresh session at the first step.
func (s *SessionStore) Create(ctx context.Context, deviceID string) (*models.OnboardingSession, error) {
	now := time.Now()
	session := &models.OnboardingSession{
		SessionID:     uuid.New().String(),
		DeviceID:      deviceID,
		CurrentStep:   models.StepPersonalInfo,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.OnboardingSession, error) {
	data, err := s.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve onboarding session: %w", err)
	}
	var session models.OnboardingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal onboarding session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) save(ctx context.Context, session *models.OnboardingSession) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal onboarding session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKey(session.SessionID), string(data), s.ttl); err != nil {
		zap.L().Error("Failed to save onboarding session",
			zap.String("sessionID", session.SessionID), zap.Error(err))
		return fmt.Errorf("failed to save onboarding session: %w", err)
	}
	return nil
}

// mutate loads, applies fn, and saves the session.
func (s *SessionStore) mutate(ctx context.Context, sessionID string, fn func(*models.OnboardingSession)) (*models.OnboardingSession, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(session)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetPersonalInfo commits the personal-info section. An existing profile
// photo descriptor survives unless the update carries its own.
func (s *SessionStore) SetPersonalInfo(ctx context.Context, sessionID string, info models.PersonalInfo) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		if info.ProfilePhoto == nil {
			info.ProfilePhoto = session.Answers.PersonalInfo.ProfilePhoto
		}
		session.Answers.PersonalInfo = info
	})
}

// SetClinicInfo commits the clinic-info section.
func (s *SessionStore) SetClinicInfo(ctx context.Context, sessionID string, info models.ClinicInfo) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		session.Answers.ClinicInfo = info
	})
}

// SetDocuments commits the documents section. Descriptors already committed
// survive a resubmission that does not replace them.
func (s *SessionStore) SetDocuments(ctx context.Context, sessionID string, docs models.Documents) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		existing := session.Answers.Documents
		if docs.GovernmentID == nil {
			docs.GovernmentID = existing.GovernmentID
		}
		if docs.RegistrationCertificate == nil {
			docs.RegistrationCertificate = existing.RegistrationCertificate
		}
		if docs.Accreditation == nil {
			docs.Accreditation = existing.Accreditation
		}
		session.Answers.Documents = docs
	})
}

// SetCurrentStep moves the step cursor.
func (s *SessionStore) SetCurrentStep(ctx context.Context, sessionID string, step int) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		session.CurrentStep = step
	})
}

// SetPhoneVerified records a completed phone verification for the session.
func (s *SessionStore) SetPhoneVerified(ctx context.Context, sessionID, phone string) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		session.PhoneVerified = true
		session.VerifiedPhone = phone
	})
}

// ClearPhoneVerified drops verification after the verified value was edited.
func (s *SessionStore) ClearPhoneVerified(ctx context.Context, sessionID string) (*models.OnboardingSession, error) {
	return s.mutate(ctx, sessionID, func(session *models.OnboardingSession) {
		session.PhoneVerified = false
		session.VerifiedPhone = ""
	})
}

// Delete removes the session entirely.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, sessionKey(sessionID))
}
