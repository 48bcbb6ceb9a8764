package onboarding

import (
	"context"
	"fmt"
	"net/url"

	"clinicore/config"
	"clinicore/models"
	"clinicore/utils"

	"go.uber.org/zap"
)

// RedisOTPManager is the production OTPManager over the Redis OTP cache.
type RedisOTPManager struct{}

func (RedisOTPManager) Initiate(phone string) error {
	return utils.InitiatePhoneOTP(phone)
}

func (RedisOTPManager) Confirm(phone, otp string) error {
	return utils.VerifyPhoneOTPRecord(phone, otp)
}

// JWTVerifyTokenIssuer is the production VerifyTokenIssuer.
type JWTVerifyTokenIssuer struct{}

func (JWTVerifyTokenIssuer) Issue(phone string) (string, error) {
	return utils.GenerateVerifiedPhoneToken(phone)
}

func (JWTVerifyTokenIssuer) Phone(token string) (string, error) {
	return utils.VerifiedPhoneFromToken(token)
}

// CheckPhone runs the uniqueness check for a candidate phone number. When the
// number is free, the draft subset is persisted first so it survives the
// redirect, an OTP is initiated, and the external verification redirect is
// returned. A registered number or transport failure leaves all committed
// state untouched.
func (s *DefaultOnboardingService) CheckPhone(ctx context.Context, sessionID, phone, returnURL string) (*models.PhoneCheckResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone number is required")
	}

	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exists, err := s.Phones.PhoneExists(phone)
	if err != nil {
		s.Logger.Error("phone uniqueness check failed", zap.String("phone", phone), zap.Error(err))
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if exists {
		return &models.PhoneCheckResult{Exists: true}, nil
	}

	// Persist the draft before anything can navigate away.
	draft := models.VerificationDraft{
		Name:  session.Answers.PersonalInfo.FullName,
		Email: session.Answers.PersonalInfo.Email,
		Phone: phone,
	}
	if err := s.Drafts.Put(ctx, session.DeviceID, draft); err != nil {
		return nil, err
	}

	if err := s.OTP.Initiate(phone); err != nil {
		return nil, err
	}

	if returnURL == "" {
		returnURL = models.StepPaths[models.StepPersonalInfo]
	}
	redirect := fmt.Sprintf("%s?returnUrl=%s",
		config.AppConfig.VerifyReturnBase, url.QueryEscape(returnURL))

	return &models.PhoneCheckResult{Exists: false, RedirectURL: redirect}, nil
}

// ConfirmOTP validates the submitted code and mints the signed verified-phone
// token the return redirect carries. The session, when still present, is
// marked verified as well.
func (s *DefaultOnboardingService) ConfirmOTP(ctx context.Context, sessionID, phone, otp string) (string, error) {
	if err := s.OTP.Confirm(phone, otp); err != nil {
		return "", err
	}

	token, err := s.Tokens.Issue(phone)
	if err != nil {
		return "", fmt.Errorf("failed to issue verification token: %w", err)
	}

	if sessionID != "" {
		if _, err := s.Sessions.SetPhoneVerified(ctx, sessionID, phone); err != nil && err != ErrSessionNotFound {
			s.Logger.Warn("failed to mark session phone verified",
				zap.String("sessionID", sessionID), zap.Error(err))
		}
	}

	return token, nil
}
