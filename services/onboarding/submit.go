package onboarding

import (
	"context"
	"fmt"
	"time"

	"clinicore/config"
	"clinicore/models"
	"clinicore/services/tasks"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// completionRedirectDelay is how long the completion screen waits before the
// automatic redirect; the client keeps a manual escape action.
const completionRedirectDelay = 5

// Finalize performs the terminal submission: every section is re-validated,
// staged documents are uploaded, the clinic record is persisted, billing and
// notifications fire, and the wizard state is destroyed. Failure leaves the
// session intact so the user can resubmit; the attempt is a single atomic
// post with no partial-success handling.
func (s *DefaultOnboardingService) Finalize(ctx context.Context, sessionID string) (*models.CompletionResult, FieldErrors, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	errs := s.validateAll(session)
	if errs.HasErrors() {
		return nil, errs, nil
	}

	answers := session.Answers
	clinicID := uuid.New().String()

	docs, photoID, err := s.uploadStagedFiles(ctx, session, clinicID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upload onboarding documents: %w", err)
	}

	clinic := &models.Clinic{
		ID:                 clinicID,
		Name:               answers.ClinicInfo.ClinicName,
		ClinicType:         answers.ClinicInfo.ClinicType,
		RegistrationNumber: answers.ClinicInfo.RegistrationNumber,
		EstablishmentYear:  answers.ClinicInfo.EstablishmentYear,
		Address:            answers.ClinicInfo.Address,
		Admin: models.ClinicAdmin{
			FullName:     answers.PersonalInfo.FullName,
			Email:        answers.PersonalInfo.Email,
			Phone:        answers.PersonalInfo.Phone,
			Designation:  answers.PersonalInfo.Designation,
			DateOfBirth:  answers.PersonalInfo.DateOfBirth,
			ProfilePhoto: photoID,
		},
		Departments:       answers.Documents.Departments,
		DoctorsCount:      answers.Documents.DoctorsCount,
		CommunicationMode: answers.Documents.CommunicationMode,
		Documents:         docs,
		Status:            "pending_review",
	}

	// Billing failure is logged but does not lose the record; the customer
	// can be created again from the admin side.
	if s.Billing != nil {
		customerID, billErr := s.Billing.CreateCustomer(ctx, clinic)
		if billErr != nil {
			s.Logger.Warn("failed to create billing customer",
				zap.String("clinicID", clinicID), zap.Error(billErr))
		} else {
			clinic.BillingCustomerID = customerID
		}
	}

	if err := s.Clinics.Create(clinic); err != nil {
		return nil, nil, fmt.Errorf("failed to persist clinic: %w", err)
	}

	if s.Notifier != nil {
		if notifyErr := s.Notifier.ClinicOnboarded(ctx, clinic); notifyErr != nil {
			s.Logger.Warn("failed to notify ops of completed onboarding",
				zap.String("clinicID", clinicID), zap.Error(notifyErr))
		}
	}

	if err := s.Staging.Clear(sessionID); err != nil {
		s.Logger.Warn("failed to clear staging after submission", zap.Error(err))
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		s.Logger.Warn("failed to delete session after submission", zap.Error(err))
	}

	s.Logger.Info("clinic onboarding completed",
		zap.String("clinicID", clinicID), zap.String("clinic", clinic.Name))

	return &models.CompletionResult{
		ClinicID:      clinicID,
		RedirectPath:  config.AppConfig.CompletionRedirect,
		RedirectAfter: completionRedirectDelay,
	}, nil, nil
}

// validateAll re-runs every step's validation against the committed answers.
func (s *DefaultOnboardingService) validateAll(session *models.OnboardingSession) FieldErrors {
	a := session.Answers
	now := time.Now()

	errs := ValidatePersonalInfo(models.PersonalInfoRequest{
		FullName:    a.PersonalInfo.FullName,
		Email:       a.PersonalInfo.Email,
		Phone:       a.PersonalInfo.Phone,
		Designation: a.PersonalInfo.Designation,
		DateOfBirth: a.PersonalInfo.DateOfBirth,
	}, session.PhoneVerified, now)

	for field, msg := range ValidateClinicInfo(models.ClinicInfoRequest{
		ClinicName:         a.ClinicInfo.ClinicName,
		ClinicType:         a.ClinicInfo.ClinicType,
		RegistrationNumber: a.ClinicInfo.RegistrationNumber,
		EstablishmentYear:  a.ClinicInfo.EstablishmentYear,
		Address:            a.ClinicInfo.Address,
	}, now) {
		errs[field] = msg
	}

	for field, msg := range ValidateDocuments(models.DocumentsRequest{
		Departments:       a.Documents.Departments,
		DoctorsCount:      a.Documents.DoctorsCount,
		CommunicationMode: a.Documents.CommunicationMode,
	}, a.Documents) {
		errs[field] = msg
	}

	return errs
}

// uploadStagedFiles pushes every staged file to storage. The government ID
// goes through the encrypted KYC path; everything else uploads plain.
func (s *DefaultOnboardingService) uploadStagedFiles(ctx context.Context, session *models.OnboardingSession, clinicID string) ([]models.ClinicDocumentRef, string, error) {
	staged, err := s.Staging.List(session.SessionID)
	if err != nil {
		return nil, "", err
	}

	descriptorFor := func(field string) *models.FileDescriptor {
		switch field {
		case "profilePhoto":
			return session.Answers.PersonalInfo.ProfilePhoto
		case "governmentId":
			return session.Answers.Documents.GovernmentID
		case "registrationCertificate":
			return session.Answers.Documents.RegistrationCertificate
		case "accreditation":
			return session.Answers.Documents.Accreditation
		}
		return nil
	}

	var refs []models.ClinicDocumentRef
	var photoID string

	for field, path := range staged {
		var publicID string
		var upErr error

		switch field {
		case "governmentId":
			publicID, upErr = s.Storage.UploadKYCFile(ctx, path, "clinics/"+clinicID+"/kyc", s.kycAdminKey())
		case "profilePhoto":
			publicID, upErr = s.Storage.UploadFile(ctx, path, "clinics/"+clinicID+"/profile")
		default:
			publicID, upErr = s.Storage.UploadFile(ctx, path, "clinics/"+clinicID+"/documents")
		}
		if upErr != nil {
			return nil, "", fmt.Errorf("upload of %s failed: %w", field, upErr)
		}

		if field == "profilePhoto" {
			photoID = publicID
			continue
		}

		ref := models.ClinicDocumentRef{Field: field, PublicID: publicID}
		if desc := descriptorFor(field); desc != nil {
			ref.Name = desc.Name
			ref.Type = desc.Type
			ref.Size = desc.Size
		}
		refs = append(refs, ref)
	}

	return refs, photoID, nil
}

func (s *DefaultOnboardingService) kycAdminKey() string {
	return viper.GetString("cloudinary.adminKey")
}

// scheduleAbandonmentReminder enqueues a nudge processed a day after session
// creation; the worker drops it silently if the wizard finished by then.
func (s *DefaultOnboardingService) scheduleAbandonmentReminder(session *models.OnboardingSession) {
	if s.Tasks == nil {
		return
	}
	payload := models.ReminderPayload{
		SessionID: session.SessionID,
		FireDate:  time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	task, opts, err := tasks.NewOnboardingReminderTask(payload, time.Now().Add(24*time.Hour))
	if err != nil {
		s.Logger.Warn("failed to build abandonment reminder task", zap.Error(err))
		return
	}
	if _, err := s.Tasks.Enqueue(task, opts...); err != nil {
		s.Logger.Warn("failed to enqueue abandonment reminder", zap.Error(err))
	}
}
