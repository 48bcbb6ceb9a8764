package onboarding

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"clinicore/config"
	clinicRepo "clinicore/database/repository/clinic"
	"clinicore/models"

	"github.com/stretchr/testify/require"
)

type fakeClinicRepo struct {
	clinicRepo.ClinicRepository
	created []*models.Clinic
}

func (f *fakeClinicRepo) Create(clinic *models.Clinic) error {
	f.created = append(f.created, clinic)
	return nil
}

func (f *fakeClinicRepo) PhoneExists(phone string) (bool, error) {
	for _, c := range f.created {
		if c.Admin.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type fakeStorage struct {
	uploads map[string]string // local path -> dest folder
	kyc     map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string]string), kyc: make(map[string]string)}
}

func (f *fakeStorage) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	f.uploads[localFilePath] = destFolder
	return "public/" + destFolder, nil
}

func (f *fakeStorage) UploadKYCFile(ctx context.Context, localFilePath, destFolder, adminKey string) (string, error) {
	f.kyc[localFilePath] = destFolder
	return "kyc/" + destFolder, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, publicID string) error { return nil }

func (f *fakeStorage) GetDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error) {
	return "https://files.example/" + publicID, nil
}

func (f *fakeStorage) GetSecureDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error) {
	return "https://files.example/secure/" + publicID, nil
}

func submitAllSteps(t *testing.T, svc *DefaultOnboardingService, sessionID, phone, token string) {
	t.Helper()
	ctx := context.Background()

	personalFiles := StepFiles{
		Headers:      headerMap(t, "profilePhoto", "me.png", "image/png", []byte("png bytes")),
		LastModified: map[string]int64{},
	}
	_, fieldErrs, err := svc.SubmitPersonalInfo(ctx, sessionID, models.PersonalInfoRequest{
		FullName:      "Amina Odhiambo",
		Email:         "amina@clinic.example",
		Phone:         phone,
		Designation:   "Medical Director",
		DateOfBirth:   "1985-03-12",
		VerifiedToken: token,
	}, personalFiles)
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors(), "personal info errors: %v", fieldErrs)

	_, fieldErrs, err = svc.SubmitClinicInfo(ctx, sessionID, models.ClinicInfoRequest{
		ClinicName:         "Sunrise Medical Centre",
		ClinicType:         "general",
		RegistrationNumber: "REG-2291",
		EstablishmentYear:  "2012",
		Address:            "14 Haile Selassie Ave, Nairobi",
	})
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors(), "clinic info errors: %v", fieldErrs)

	docFiles := StepFiles{
		Headers:      headerMap(t, "governmentId", "id.pdf", "application/pdf", []byte("id bytes")),
		LastModified: map[string]int64{},
	}
	docFiles.Headers["registrationCertificate"] = uploadedFile(t, "registrationCertificate", "cert.pdf", "application/pdf", []byte("cert bytes"))
	_, fieldErrs, err = svc.SubmitDocuments(ctx, sessionID, models.DocumentsRequest{
		Departments:       "Radiology, Pediatrics",
		DoctorsCount:      "12",
		CommunicationMode: "email",
	}, docFiles)
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors(), "documents errors: %v", fieldErrs)
}

func headerMap(t *testing.T, field, name, contentType string, content []byte) map[string]*multipart.FileHeader {
	t.Helper()
	return map[string]*multipart.FileHeader{field: uploadedFile(t, field, name, contentType, content)}
}

func TestFullOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	config.AppConfig.VerifyReturnBase = "/sign-up/verify-otp"
	config.AppConfig.CompletionRedirect = "/dashboard"

	svc := newTestService(t, &fakePhoneChecker{})
	clinics := &fakeClinicRepo{}
	store := newFakeStorage()
	svc.Clinics = clinics
	svc.Storage = store

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	// Phone is free: the flow redirects out for OTP verification.
	check, err := svc.CheckPhone(ctx, created.SessionID, "+254700000001", "/onboarding/personal-info")
	require.NoError(t, err)
	require.False(t, check.Exists)
	require.NotEmpty(t, check.RedirectURL)

	token, err := svc.ConfirmOTP(ctx, created.SessionID, "+254700000001", "483920")
	require.NoError(t, err)

	submitAllSteps(t, svc, created.SessionID, "+254700000001", token)

	result, fieldErrs, err := svc.Finalize(ctx, created.SessionID)
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors(), "finalize errors: %v", fieldErrs)
	require.Equal(t, "/dashboard", result.RedirectPath)
	require.Equal(t, 5, result.RedirectAfter)

	// The clinic landed with everything the wizard collected.
	require.Len(t, clinics.created, 1)
	clinic := clinics.created[0]
	require.Equal(t, result.ClinicID, clinic.ID)
	require.Equal(t, "Sunrise Medical Centre", clinic.Name)
	require.Equal(t, "pending_review", clinic.Status)
	require.Equal(t, "Amina Odhiambo", clinic.Admin.FullName)
	require.Len(t, clinic.Documents, 2)

	// The government ID went through the encrypted path.
	require.Len(t, store.kyc, 1)
	for _, folder := range store.kyc {
		require.Equal(t, "clinics/"+clinic.ID+"/kyc", folder)
	}
	require.Equal(t, "public/clinics/"+clinic.ID+"/profile", clinic.Admin.ProfilePhoto)

	// Session and staging are gone; a resubmission finds nothing.
	_, err = svc.Sessions.Get(ctx, created.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	staged, err := svc.Staging.List(created.SessionID)
	require.NoError(t, err)
	require.Empty(t, staged)
}

func TestFullFlowAlreadyRegisteredPhone(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{exists: map[string]bool{"+254700000001": true}})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	check, err := svc.CheckPhone(ctx, created.SessionID, "+254700000001", "")
	require.NoError(t, err)
	require.True(t, check.Exists)

	// Still on the first step with nothing committed.
	session, err := svc.Sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, models.StepPersonalInfo, session.CurrentStep)
	require.Empty(t, session.Answers.PersonalInfo.Phone)
}

func TestFinalizeRevalidatesEverySection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})
	svc.Clinics = &fakeClinicRepo{}
	svc.Storage = newFakeStorage()

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	// Nothing was ever submitted; every section must come back incomplete.
	result, fieldErrs, err := svc.Finalize(ctx, created.SessionID)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Contains(t, fieldErrs, "fullName")
	require.Contains(t, fieldErrs, "clinicName")
	require.Contains(t, fieldErrs, "governmentId")
}

func TestFailedAttemptStagesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	// Blank full name blocks the step; the attached photo must not linger
	// in the side-table.
	_, fieldErrs, err := svc.SubmitPersonalInfo(ctx, created.SessionID, models.PersonalInfoRequest{
		Email:         "amina@clinic.example",
		Phone:         "+254700000001",
		Designation:   "Medical Director",
		DateOfBirth:   "1985-03-12",
		VerifiedToken: "verified:+254700000001",
	}, StepFiles{
		Headers:      headerMap(t, "profilePhoto", "me.png", "image/png", []byte("png bytes")),
		LastModified: map[string]int64{},
	})
	require.NoError(t, err)
	require.Contains(t, fieldErrs, "fullName")

	staged, err := svc.Staging.List(created.SessionID)
	require.NoError(t, err)
	require.Empty(t, staged)
}

func TestStalePhotoFromFailedAttemptNeverUploaded(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})
	clinics := &fakeClinicRepo{}
	store := newFakeStorage()
	svc.Clinics = clinics
	svc.Storage = store

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)
	token := "verified:+254700000001"

	// First attempt fails validation while carrying a photo.
	_, fieldErrs, err := svc.SubmitPersonalInfo(ctx, created.SessionID, models.PersonalInfoRequest{
		Email:         "amina@clinic.example",
		Phone:         "+254700000001",
		Designation:   "Medical Director",
		DateOfBirth:   "1985-03-12",
		VerifiedToken: token,
	}, StepFiles{
		Headers:      headerMap(t, "profilePhoto", "me.png", "image/png", []byte("png bytes")),
		LastModified: map[string]int64{},
	})
	require.NoError(t, err)
	require.True(t, fieldErrs.HasErrors())

	// Second attempt succeeds without a photo; the rest of the wizard and
	// the final submission follow.
	_, fieldErrs, err = svc.SubmitPersonalInfo(ctx, created.SessionID, models.PersonalInfoRequest{
		FullName:      "Amina Odhiambo",
		Email:         "amina@clinic.example",
		Phone:         "+254700000001",
		Designation:   "Medical Director",
		DateOfBirth:   "1985-03-12",
		VerifiedToken: token,
	}, StepFiles{})
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors(), "personal info errors: %v", fieldErrs)

	_, fieldErrs, err = svc.SubmitClinicInfo(ctx, created.SessionID, models.ClinicInfoRequest{
		ClinicName:         "Sunrise Medical Centre",
		ClinicType:         "general",
		RegistrationNumber: "REG-2291",
		EstablishmentYear:  "2012",
		Address:            "14 Haile Selassie Ave, Nairobi",
	})
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors())

	docFiles := StepFiles{
		Headers:      headerMap(t, "governmentId", "id.pdf", "application/pdf", []byte("id bytes")),
		LastModified: map[string]int64{},
	}
	docFiles.Headers["registrationCertificate"] = uploadedFile(t, "registrationCertificate", "cert.pdf", "application/pdf", []byte("cert bytes"))
	_, fieldErrs, err = svc.SubmitDocuments(ctx, created.SessionID, models.DocumentsRequest{
		Departments:       "Radiology, Pediatrics",
		DoctorsCount:      "12",
		CommunicationMode: "email",
	}, docFiles)
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors())

	result, fieldErrs, err := svc.Finalize(ctx, created.SessionID)
	require.NoError(t, err)
	require.False(t, fieldErrs.HasErrors())

	// No photo was ever committed, so none lands on the record.
	require.Len(t, clinics.created, 1)
	require.Empty(t, clinics.created[0].Admin.ProfilePhoto)
	for _, folder := range store.uploads {
		require.NotEqual(t, "clinics/"+result.ClinicID+"/profile", folder)
	}
}
