package utils

import "time"

// SessionKeyPrefix is the prefix used for Redis onboarding session keys.
const SessionKeyPrefix = "onboarding:"

// DraftKeyPrefix is the prefix used for Redis verification draft keys.
// The logical key name mirrors the browser-storage key the web client uses.
const DraftKeyPrefix = "userData:"

// OTPKeyPrefix is the prefix used for Redis OTP keys.
const OTPKeyPrefix = "otp:"

// OTPTTL is the time-to-live for a pending OTP.
const OTPTTL = 5 * time.Minute

// VerifyTokenTTL bounds how long a verified-phone return token stays valid.
const VerifyTokenTTL = 15 * time.Minute
