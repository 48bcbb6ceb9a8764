package onboarding

import (
	"context"
	"mime/multipart"

	clinicRepo "clinicore/database/repository/clinic"
	"clinicore/models"
	"clinicore/services/billing"
	"clinicore/services/notification"
	"clinicore/services/storage"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PhoneChecker answers whether a phone number is already registered.
type PhoneChecker interface {
	PhoneExists(phone string) (bool, error)
}

// OTPManager issues and confirms one-time codes for a phone number.
type OTPManager interface {
	Initiate(phone string) error
	Confirm(phone, otp string) error
}

// VerifyTokenIssuer mints and checks the signed verified-phone token carried
// back through the OTP return redirect.
type VerifyTokenIssuer interface {
	Issue(phone string) (string, error)
	Phone(token string) (string, error)
}

// StepFiles carries the uploaded parts of a multipart step submission, keyed
// by field name, along with any client-sent last-modified timestamps.
type StepFiles struct {
	Headers      map[string]*multipart.FileHeader
	LastModified map[string]int64
}

// OnboardingService drives the clinic-administrator onboarding wizard.
type OnboardingService interface {
	CreateSession(ctx context.Context, deviceID string) (*models.StepResult, error)
	Mount(ctx context.Context, sessionID string) (*models.MountView, error)
	SubmitPersonalInfo(ctx context.Context, sessionID string, req models.PersonalInfoRequest, files StepFiles) (*models.StepResult, FieldErrors, error)
	SubmitClinicInfo(ctx context.Context, sessionID string, req models.ClinicInfoRequest) (*models.StepResult, FieldErrors, error)
	SubmitDocuments(ctx context.Context, sessionID string, req models.DocumentsRequest, files StepFiles) (*models.StepResult, FieldErrors, error)
	Back(ctx context.Context, sessionID string) (*models.StepResult, error)
	Reset(ctx context.Context, sessionID string) error
	CheckPhone(ctx context.Context, sessionID, phone, returnURL string) (*models.PhoneCheckResult, error)
	ConfirmOTP(ctx context.Context, sessionID, phone, otp string) (string, error)
	Finalize(ctx context.Context, sessionID string) (*models.CompletionResult, FieldErrors, error)
}

// DefaultOnboardingService is the production implementation.
type DefaultOnboardingService struct {
	Sessions *SessionStore
	Drafts   *DraftStore
	Staging  *FileStager
	Phones   PhoneChecker
	OTP      OTPManager
	Tokens   VerifyTokenIssuer
	Clinics  clinicRepo.ClinicRepository
	Storage  storage.StorageService
	Billing  billing.BillingService
	Notifier notification.Notifier
	Tasks    *asynq.Client
	Logger   *zap.Logger
}
