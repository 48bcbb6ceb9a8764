package onboarding

import (
	"testing"
	"time"

	"clinicore/models"

	"github.com/stretchr/testify/require"
)

func validPersonalInfo() models.PersonalInfoRequest {
	return models.PersonalInfoRequest{
		FullName:    "Amina Odhiambo",
		Email:       "amina@clinic.example",
		Phone:       "+254700000001",
		Designation: "Medical Director",
		DateOfBirth: "1985-03-12",
	}
}

func TestValidatePersonalInfoRequiredFields(t *testing.T) {
	now := time.Now()

	errs := ValidatePersonalInfo(models.PersonalInfoRequest{}, false, now)
	for _, field := range []string{"fullName", "email", "phone", "designation", "dateOfBirth"} {
		require.Contains(t, errs, field)
	}

	// A single blank field yields exactly that field's error.
	req := validPersonalInfo()
	req.FullName = ""
	errs = ValidatePersonalInfo(req, true, now)
	require.Len(t, errs, 1)
	require.Contains(t, errs, "fullName")
}

func TestValidatePersonalInfoEmailShape(t *testing.T) {
	req := validPersonalInfo()
	req.Email = "not-an-email"
	errs := ValidatePersonalInfo(req, true, time.Now())
	require.Equal(t, "Enter a valid email address", errs["email"])
}

func TestValidatePersonalInfoPhoneNeedsVerification(t *testing.T) {
	req := validPersonalInfo()

	errs := ValidatePersonalInfo(req, false, time.Now())
	require.Len(t, errs, 1)
	require.Equal(t, "Phone number needs verification", errs["phone"])

	errs = ValidatePersonalInfo(req, true, time.Now())
	require.False(t, errs.HasErrors())
}

func TestValidatePersonalInfoAgeGate(t *testing.T) {
	today := date(2025, time.June, 15)
	req := validPersonalInfo()

	req.DateOfBirth = "2007-06-16"
	errs := ValidatePersonalInfo(req, true, today)
	require.Equal(t, "You must be at least 18 years old", errs["dateOfBirth"])

	req.DateOfBirth = "2007-06-15"
	errs = ValidatePersonalInfo(req, true, today)
	require.False(t, errs.HasErrors())

	req.DateOfBirth = "15/06/2007"
	errs = ValidatePersonalInfo(req, true, today)
	require.Equal(t, "Enter a valid date of birth", errs["dateOfBirth"])
}

func validClinicInfo() models.ClinicInfoRequest {
	return models.ClinicInfoRequest{
		ClinicName:         "Sunrise Medical Centre",
		ClinicType:         "general",
		RegistrationNumber: "REG-2291",
		EstablishmentYear:  "2012",
		Address:            "14 Haile Selassie Ave, Nairobi",
	}
}

func TestValidateClinicInfo(t *testing.T) {
	now := time.Now()

	require.False(t, ValidateClinicInfo(validClinicInfo(), now).HasErrors())

	req := validClinicInfo()
	req.ClinicType = "veterinary"
	require.Equal(t, "Select a valid clinic type", ValidateClinicInfo(req, now)["clinicType"])

	req = validClinicInfo()
	req.EstablishmentYear = "1750"
	require.Equal(t, "Enter a valid establishment year", ValidateClinicInfo(req, now)["establishmentYear"])

	req = validClinicInfo()
	req.EstablishmentYear = "next year"
	require.Equal(t, "Enter a valid establishment year", ValidateClinicInfo(req, now)["establishmentYear"])
}

func TestValidateDocuments(t *testing.T) {
	req := models.DocumentsRequest{
		Departments:       "Radiology, Pediatrics",
		DoctorsCount:      "12",
		CommunicationMode: "email",
	}
	docs := models.Documents{
		GovernmentID:            &models.FileDescriptor{Name: "id.pdf"},
		RegistrationCertificate: &models.FileDescriptor{Name: "cert.pdf"},
	}

	// Accreditation stays optional.
	require.False(t, ValidateDocuments(req, docs).HasErrors())

	errs := ValidateDocuments(req, models.Documents{})
	require.Contains(t, errs, "governmentId")
	require.Contains(t, errs, "registrationCertificate")

	req.DoctorsCount = "0"
	require.Equal(t, "Enter a valid number of doctors", ValidateDocuments(req, docs)["doctorsCount"])

	req.DoctorsCount = "12"
	req.CommunicationMode = "fax"
	require.Equal(t, "Select a valid communication mode", ValidateDocuments(req, docs)["communicationMode"])
}
