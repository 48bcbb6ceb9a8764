package models

import "time"

// Wizard step cursor values. Steps advance forward on submission and rewind
// only through explicit back navigation.
const (
	StepPersonalInfo = 0
	StepClinicInfo   = 1
	StepDocuments    = 2
	StepReview       = 3
)

// StepPaths maps each wizard step to its fixed route.
var StepPaths = map[int]string{
	StepPersonalInfo: "/onboarding/personal-info",
	StepClinicInfo:   "/onboarding/clinic-info",
	StepDocuments:    "/onboarding/documents",
	StepReview:       "/onboarding/review",
}

// ClinicTypes is the fixed set of accepted clinic classifications.
var ClinicTypes = []string{
	"general",
	"dental",
	"pediatric",
	"diagnostic",
	"multi-specialty",
}

// CommunicationModes is the fixed set of accepted contact preferences.
var CommunicationModes = []string{"email", "phone", "whatsapp"}

// FileDescriptor is the serializable stand-in for an uploaded file. The live
// bytes are staged separately under the same field key; only this projection
// ever enters the session.
type FileDescriptor struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
	Base64       string `json:"base64,omitempty"`
}

// PersonalInfo holds the answers collected on the first wizard step.
type PersonalInfo struct {
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Designation  string          `json:"designation"`
	DateOfBirth  string          `json:"dateOfBirth"` // YYYY-MM-DD
	ProfilePhoto *FileDescriptor `json:"profilePhoto,omitempty"`
}

// ClinicInfo holds the answers collected on the second wizard step.
type ClinicInfo struct {
	ClinicName         string `json:"clinicName"`
	ClinicType         string `json:"clinicType"`
	RegistrationNumber string `json:"registrationNumber"`
	EstablishmentYear  string `json:"establishmentYear"`
	Address            string `json:"address"`
}

// Documents holds the answers collected on the third wizard step.
type Documents struct {
	GovernmentID            *FileDescriptor `json:"governmentId,omitempty"`
	RegistrationCertificate *FileDescriptor `json:"registrationCertificate,omitempty"`
	Accreditation           *FileDescriptor `json:"accreditation,omitempty"`
	Departments             string          `json:"departments"`
	DoctorsCount            string          `json:"doctorsCount"`
	CommunicationMode       string          `json:"communicationMode"`
}

// OnboardingAnswers is the aggregate of everything collected across steps.
type OnboardingAnswers struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	ClinicInfo   ClinicInfo   `json:"clinicInfo"`
	Documents    Documents    `json:"documents"`
}

// OnboardingSession holds all transient data during the multi-step wizard.
type OnboardingSession struct {
	SessionID     string            `json:"sessionId"`
	DeviceID      string            `json:"deviceId"`
	Answers       OnboardingAnswers `json:"answers"`
	CurrentStep   int               `json:"currentStep"`
	PhoneVerified bool              `json:"phoneVerified"`
	VerifiedPhone string            `json:"verifiedPhone,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// VerificationDraft is the narrow subset of answers that must survive the
// full-page redirect to the external OTP verification step. Nothing beyond
// these three fields ever enters the draft.
type VerificationDraft struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsEmpty reports whether the draft carries no surviving fields.
func (d VerificationDraft) IsEmpty() bool {
	return d.Name == "" && d.Email == "" && d.Phone == ""
}

// PersonalInfoRequest is the payload for the personal-info step submission.
type PersonalInfoRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Designation   string `json:"designation"`
	DateOfBirth   string `json:"dateOfBirth"`
	VerifiedToken string `json:"verifiedToken,omitempty"`
}

// ClinicInfoRequest is the payload for the clinic-info step submission.
type ClinicInfoRequest struct {
	ClinicName         string `json:"clinicName"`
	ClinicType         string `json:"clinicType"`
	RegistrationNumber string `json:"registrationNumber"`
	EstablishmentYear  string `json:"establishmentYear"`
	Address            string `json:"address"`
}

// DocumentsRequest is the non-file portion of the documents step submission.
// The files themselves arrive as multipart parts keyed by field name.
type DocumentsRequest struct {
	Departments       string `json:"departments"`
	DoctorsCount      string `json:"doctorsCount"`
	CommunicationMode string `json:"communicationMode"`
}

// StepResult is returned after a successful step submission.
type StepResult struct {
	SessionID   string `json:"sessionId"`
	CurrentStep int    `json:"currentStep"`
	NextPath    string `json:"nextPath"`
}

// MountView is what a step renders from on mount: committed answers, the
// cursor, and which personal fields are read-only because the draft already
// proves them verified.
type MountView struct {
	SessionID      string            `json:"sessionId"`
	Answers        OnboardingAnswers `json:"answers"`
	CurrentStep    int               `json:"currentStep"`
	CurrentPath    string            `json:"currentPath"`
	PhoneVerified  bool              `json:"phoneVerified"`
	ReadOnlyFields []string          `json:"readOnlyFields,omitempty"`
	Draft          VerificationDraft `json:"draft"`
}

// PhoneCheckResult reports the outcome of the uniqueness check and, when the
// number is free, where the client should redirect for OTP verification.
type PhoneCheckResult struct {
	Exists      bool   `json:"exists"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// CompletionResult is the terminal payload after a successful final submission.
type CompletionResult struct {
	ClinicID      string `json:"clinicId"`
	RedirectPath  string `json:"redirectPath"`
	RedirectAfter int    `json:"redirectAfterSeconds"`
}
