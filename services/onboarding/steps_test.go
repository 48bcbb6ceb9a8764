package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clinicore/config"
	"clinicore/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePhoneChecker struct {
	exists map[string]bool
	err    error
}

func (f *fakePhoneChecker) PhoneExists(phone string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.exists[phone], nil
}

type fakeOTPManager struct {
	initiated []string
	code      string
}

func (f *fakeOTPManager) Initiate(phone string) error {
	f.initiated = append(f.initiated, phone)
	return nil
}

func (f *fakeOTPManager) Confirm(phone, otp string) error {
	if otp != f.code {
		return errors.New("invalid or expired OTP")
	}
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(phone string) (string, error) {
	return "verified:" + phone, nil
}

func (fakeTokenIssuer) Phone(token string) (string, error) {
	if !strings.HasPrefix(token, "verified:") {
		return "", errors.New("invalid token")
	}
	return strings.TrimPrefix(token, "verified:"), nil
}

func newTestService(t *testing.T, phones *fakePhoneChecker) *DefaultOnboardingService {
	t.Helper()
	stager, err := NewFileStager(t.TempDir())
	require.NoError(t, err)

	return &DefaultOnboardingService{
		Sessions: NewSessionStore(newFakeKV(), 30*time.Minute),
		Drafts:   NewDraftStore(newFakeKV(), 24*time.Hour),
		Staging:  stager,
		Phones:   phones,
		OTP:      &fakeOTPManager{code: "483920"},
		Tokens:   fakeTokenIssuer{},
		Logger:   zap.NewNop(),
	}
}

func TestCreateSessionStartsAtPersonalInfo(t *testing.T) {
	svc := newTestService(t, &fakePhoneChecker{})

	result, err := svc.CreateSession(context.Background(), "device-1")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.Equal(t, models.StepPersonalInfo, result.CurrentStep)
	require.Equal(t, "/onboarding/personal-info", result.NextPath)
}

func TestSubmitPersonalInfoBlocksOnFieldError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	req := models.PersonalInfoRequest{
		Email:         "amina@clinic.example",
		Phone:         "+254700000001",
		Designation:   "Medical Director",
		DateOfBirth:   "1985-03-12",
		VerifiedToken: "verified:+254700000001",
	}
	result, fieldErrs, err := svc.SubmitPersonalInfo(ctx, created.SessionID, req, StepFiles{})
	require.NoError(t, err)
	require.Nil(t, result)
	require.Len(t, fieldErrs, 1)
	require.Contains(t, fieldErrs, "fullName")

	// Nothing was committed and the cursor did not move.
	session, err := svc.Sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	require.Empty(t, session.Answers.PersonalInfo.Email)
	require.Equal(t, models.StepPersonalInfo, session.CurrentStep)
}

func TestSubmitPersonalInfoUnverifiedPhone(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	req := models.PersonalInfoRequest{
		FullName:    "Amina Odhiambo",
		Email:       "amina@clinic.example",
		Phone:       "+254700000001",
		Designation: "Medical Director",
		DateOfBirth: "1985-03-12",
	}
	_, fieldErrs, err := svc.SubmitPersonalInfo(ctx, created.SessionID, req, StepFiles{})
	require.NoError(t, err)
	require.Equal(t, "Phone number needs verification", fieldErrs["phone"])
}

func TestEditingVerifiedPhoneResetsVerification(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)
	_, err = svc.Sessions.SetPhoneVerified(ctx, created.SessionID, "+254700000001")
	require.NoError(t, err)

	req := models.PersonalInfoRequest{
		FullName:    "Amina Odhiambo",
		Email:       "amina@clinic.example",
		Phone:       "+254700000099",
		Designation: "Medical Director",
		DateOfBirth: "1985-03-12",
	}
	_, fieldErrs, err := svc.SubmitPersonalInfo(ctx, created.SessionID, req, StepFiles{})
	require.NoError(t, err)
	require.Equal(t, "Phone number needs verification", fieldErrs["phone"])

	session, err := svc.Sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	require.False(t, session.PhoneVerified)
}

func TestCheckPhoneAlreadyRegistered(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{exists: map[string]bool{"+254700000001": true}})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	result, err := svc.CheckPhone(ctx, created.SessionID, "+254700000001", "")
	require.NoError(t, err)
	require.True(t, result.Exists)
	require.Empty(t, result.RedirectURL)

	// No OTP went out and no draft was written.
	require.Empty(t, svc.OTP.(*fakeOTPManager).initiated)
	draft, err := svc.Drafts.Get(ctx, "device-1")
	require.NoError(t, err)
	require.True(t, draft.IsEmpty())
}

func TestCheckPhoneTransportFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{err: errors.New("mongo unreachable")})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.CheckPhone(ctx, created.SessionID, "+254700000001", "")
	require.Error(t, err)

	draft, err := svc.Drafts.Get(ctx, "device-1")
	require.NoError(t, err)
	require.True(t, draft.IsEmpty())
}

func TestCheckPhonePersistsDraftBeforeRedirect(t *testing.T) {
	ctx := context.Background()
	config.AppConfig.VerifyReturnBase = "/sign-up/verify-otp"
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	result, err := svc.CheckPhone(ctx, created.SessionID, "+254700000001", "/onboarding/personal-info")
	require.NoError(t, err)
	require.False(t, result.Exists)
	require.Contains(t, result.RedirectURL, "/sign-up/verify-otp?returnUrl=")
	require.Contains(t, result.RedirectURL, "%2Fonboarding%2Fpersonal-info")

	draft, err := svc.Drafts.Get(ctx, "device-1")
	require.NoError(t, err)
	require.Equal(t, "+254700000001", draft.Phone)
	require.Equal(t, []string{"+254700000001"}, svc.OTP.(*fakeOTPManager).initiated)
}

func TestConfirmOTP(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.ConfirmOTP(ctx, created.SessionID, "+254700000001", "000000")
	require.Error(t, err)

	token, err := svc.ConfirmOTP(ctx, created.SessionID, "+254700000001", "483920")
	require.NoError(t, err)
	require.Equal(t, "verified:+254700000001", token)

	session, err := svc.Sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	require.True(t, session.PhoneVerified)
	require.Equal(t, "+254700000001", session.VerifiedPhone)
}

func TestMountRestoresDraftAsReadOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	// Simulate a fresh session after the redirect: only the draft survived.
	draft := models.VerificationDraft{
		Name:  "Amina Odhiambo",
		Email: "amina@clinic.example",
		Phone: "+254700000001",
	}
	require.NoError(t, svc.Drafts.Put(ctx, "device-1", draft))

	view, err := svc.Mount(ctx, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, []string{"fullName", "email", "phone"}, view.ReadOnlyFields)
	require.True(t, view.PhoneVerified)
	require.Equal(t, draft, view.Draft)
}

func TestBackRewindsOneStep(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.Back(ctx, created.SessionID)
	require.ErrorIs(t, err, ErrStepOrder)

	_, err = svc.Sessions.SetCurrentStep(ctx, created.SessionID, models.StepDocuments)
	require.NoError(t, err)

	result, err := svc.Back(ctx, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, models.StepClinicInfo, result.CurrentStep)
	require.Equal(t, "/onboarding/clinic-info", result.NextPath)
}

func TestResetDestroysSessionButKeepsDraft(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakePhoneChecker{})

	created, err := svc.CreateSession(ctx, "device-1")
	require.NoError(t, err)
	draft := models.VerificationDraft{Phone: "+254700000001"}
	require.NoError(t, svc.Drafts.Put(ctx, "device-1", draft))

	require.NoError(t, svc.Reset(ctx, created.SessionID))

	_, err = svc.Sessions.Get(ctx, created.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	got, err := svc.Drafts.Get(ctx, "device-1")
	require.NoError(t, err)
	require.Equal(t, draft, got)
}
