package onboarding

import (
	"context"
	"fmt"
	"time"

	"clinicore/models"

	"go.uber.org/zap"
)

// CreateSession starts a fresh wizard session and schedules the abandonment
// reminder.
func (s *DefaultOnboardingService) CreateSession(ctx context.Context, deviceID string) (*models.StepResult, error) {
	session, err := s.Sessions.Create(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.scheduleAbandonmentReminder(session)
	return &models.StepResult{
		SessionID:   session.SessionID,
		CurrentStep: session.CurrentStep,
		NextPath:    models.StepPaths[session.CurrentStep],
	}, nil
}

// Mount returns everything a step renders from: the committed answers, the
// cursor, and which personal fields are read-only because the draft already
// proves them verified.
func (s *DefaultOnboardingService) Mount(ctx context.Context, sessionID string) (*models.MountView, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft, err := s.Drafts.Get(ctx, session.DeviceID)
	if err != nil {
		s.Logger.Warn("failed to read verification draft", zap.Error(err))
		draft = models.VerificationDraft{}
	}

	var readOnly []string
	if draft.Name != "" {
		readOnly = append(readOnly, "fullName")
	}
	if draft.Email != "" {
		readOnly = append(readOnly, "email")
	}
	if draft.Phone != "" {
		readOnly = append(readOnly, "phone")
	}

	return &models.MountView{
		SessionID:      session.SessionID,
		Answers:        session.Answers,
		CurrentStep:    session.CurrentStep,
		CurrentPath:    models.StepPaths[session.CurrentStep],
		PhoneVerified:  session.PhoneVerified || draft.Phone != "",
		ReadOnlyFields: readOnly,
		Draft:          draft,
	}, nil
}

// phoneVerified decides whether the submitted phone value has completed the
// verification sub-flow: the session was marked verified for this exact
// number, a valid return token asserts it, or the draft already carries it
// (proof of a prior verification that survived the redirect).
func (s *DefaultOnboardingService) phoneVerified(ctx context.Context, session *models.OnboardingSession, req models.PersonalInfoRequest) bool {
	if session.PhoneVerified && session.VerifiedPhone == req.Phone {
		return true
	}
	if req.VerifiedToken != "" {
		if phone, err := s.Tokens.Phone(req.VerifiedToken); err == nil && phone == req.Phone {
			return true
		}
	}
	draft, err := s.Drafts.Get(ctx, session.DeviceID)
	if err == nil && draft.Phone != "" && draft.Phone == req.Phone {
		return true
	}
	return false
}

// SubmitPersonalInfo validates and commits the first step. Validation always
// completes before the commit, and the commit before the step advances.
func (s *DefaultOnboardingService) SubmitPersonalInfo(ctx context.Context, sessionID string, req models.PersonalInfoRequest, files StepFiles) (*models.StepResult, FieldErrors, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	// Editing a verified number invalidates the verification.
	if session.PhoneVerified && session.VerifiedPhone != req.Phone {
		if session, err = s.Sessions.ClearPhoneVerified(ctx, sessionID); err != nil {
			return nil, nil, err
		}
	}

	verified := s.phoneVerified(ctx, session, req)
	errs := ValidatePersonalInfo(req, verified, time.Now())

	info := models.PersonalInfo{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Designation: req.Designation,
		DateOfBirth: req.DateOfBirth,
	}

	var photoDesc *models.FileDescriptor
	photoHeader, hasPhoto := files.Headers["profilePhoto"]
	if hasPhoto {
		desc, descErr := DescribeFileWithPayload(photoHeader, files.LastModified["profilePhoto"])
		if descErr != nil {
			s.Logger.Warn("failed to describe profile photo", zap.Error(descErr))
			errs["profilePhoto"] = "Could not read the selected photo"
		} else {
			photoDesc = desc
		}
	}

	if errs.HasErrors() {
		return nil, errs, nil
	}

	// Staging happens only once validation has passed, so a failed attempt
	// leaves nothing in the side-table without a committed descriptor.
	if photoDesc != nil {
		if _, stageErr := s.Staging.Stage(sessionID, "profilePhoto", photoHeader); stageErr != nil {
			s.Logger.Warn("failed to stage profile photo", zap.Error(stageErr))
			errs["profilePhoto"] = "Could not read the selected photo"
			return nil, errs, nil
		}
		info.ProfilePhoto = photoDesc
	}

	if _, err := s.Sessions.SetPersonalInfo(ctx, sessionID, info); err != nil {
		return nil, nil, err
	}
	if verified {
		if _, err := s.Sessions.SetPhoneVerified(ctx, sessionID, req.Phone); err != nil {
			return nil, nil, err
		}
	}

	// The survival subset is refreshed on every successful submit.
	draft := models.VerificationDraft{Name: req.FullName, Email: req.Email, Phone: req.Phone}
	if err := s.Drafts.Put(ctx, session.DeviceID, draft); err != nil {
		s.Logger.Warn("failed to persist verification draft", zap.Error(err))
	}

	return s.advance(ctx, sessionID, models.StepClinicInfo)
}

// SubmitClinicInfo validates and commits the second step.
func (s *DefaultOnboardingService) SubmitClinicInfo(ctx context.Context, sessionID string, req models.ClinicInfoRequest) (*models.StepResult, FieldErrors, error) {
	if _, err := s.Sessions.Get(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	errs := ValidateClinicInfo(req, time.Now())
	if errs.HasErrors() {
		return nil, errs, nil
	}

	info := models.ClinicInfo{
		ClinicName:         req.ClinicName,
		ClinicType:         req.ClinicType,
		RegistrationNumber: req.RegistrationNumber,
		EstablishmentYear:  req.EstablishmentYear,
		Address:            req.Address,
	}
	if _, err := s.Sessions.SetClinicInfo(ctx, sessionID, info); err != nil {
		return nil, nil, err
	}

	return s.advance(ctx, sessionID, models.StepDocuments)
}

// documentFields are the upload field names accepted on the documents step.
var documentFields = []string{"governmentId", "registrationCertificate", "accreditation"}

// SubmitDocuments stages any uploaded documents, commits their descriptors,
// and validates the step against the merged result.
func (s *DefaultOnboardingService) SubmitDocuments(ctx context.Context, sessionID string, req models.DocumentsRequest, files StepFiles) (*models.StepResult, FieldErrors, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	docs := models.Documents{
		Departments:       req.Departments,
		DoctorsCount:      req.DoctorsCount,
		CommunicationMode: req.CommunicationMode,
	}
	errs := FieldErrors{}

	for _, field := range documentFields {
		header, ok := files.Headers[field]
		if !ok {
			continue
		}
		desc := DescribeFile(header, files.LastModified[field])
		switch field {
		case "governmentId":
			docs.GovernmentID = desc
		case "registrationCertificate":
			docs.RegistrationCertificate = desc
		case "accreditation":
			docs.Accreditation = desc
		}
	}

	// Validate against what the section will hold after the merge, so a
	// revisit does not demand files that were already committed.
	merged := docs
	existing := session.Answers.Documents
	if merged.GovernmentID == nil {
		merged.GovernmentID = existing.GovernmentID
	}
	if merged.RegistrationCertificate == nil {
		merged.RegistrationCertificate = existing.RegistrationCertificate
	}
	if merged.Accreditation == nil {
		merged.Accreditation = existing.Accreditation
	}
	for field, msg := range ValidateDocuments(req, merged) {
		errs[field] = msg
	}
	if errs.HasErrors() {
		return nil, errs, nil
	}

	// Stage the live bytes only after validation has passed.
	for _, field := range documentFields {
		header, ok := files.Headers[field]
		if !ok {
			continue
		}
		if _, stageErr := s.Staging.Stage(sessionID, field, header); stageErr != nil {
			s.Logger.Warn("failed to stage document",
				zap.String("field", field), zap.Error(stageErr))
			errs[field] = "Could not read the selected file"
			return nil, errs, nil
		}
	}

	if _, err := s.Sessions.SetDocuments(ctx, sessionID, docs); err != nil {
		return nil, nil, err
	}

	return s.advance(ctx, sessionID, models.StepReview)
}

// advance moves the cursor forward. The cursor only ever moves forward here;
// Back is the single path that rewinds it.
func (s *DefaultOnboardingService) advance(ctx context.Context, sessionID string, step int) (*models.StepResult, FieldErrors, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if step > session.CurrentStep {
		if session, err = s.Sessions.SetCurrentStep(ctx, sessionID, step); err != nil {
			return nil, nil, err
		}
	}
	return &models.StepResult{
		SessionID:   session.SessionID,
		CurrentStep: session.CurrentStep,
		NextPath:    models.StepPaths[step],
	}, nil, nil
}

// Back rewinds the cursor by one step.
func (s *DefaultOnboardingService) Back(ctx context.Context, sessionID string) (*models.StepResult, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep <= models.StepPersonalInfo {
		return nil, fmt.Errorf("%w: already at the first step", ErrStepOrder)
	}
	session, err = s.Sessions.SetCurrentStep(ctx, sessionID, session.CurrentStep-1)
	if err != nil {
		return nil, err
	}
	return &models.StepResult{
		SessionID:   session.SessionID,
		CurrentStep: session.CurrentStep,
		NextPath:    models.StepPaths[session.CurrentStep],
	}, nil
}

// Reset destroys the session and its staged files. The verification draft is
// deliberately left in place; it is session-scoped to the device, not the
// wizard run.
func (s *DefaultOnboardingService) Reset(ctx context.Context, sessionID string) error {
	if err := s.Staging.Clear(sessionID); err != nil {
		s.Logger.Warn("failed to clear staging on reset",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
	return s.Sessions.Delete(ctx, sessionID)
}
