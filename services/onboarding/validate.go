package onboarding

import (
	"regexp"
	"strconv"
	"time"

	"clinicore/models"
)

// MinimumAge is the age gate applied to the administrator's date of birth.
const MinimumAge = 18

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// ValidatePersonalInfo checks the personal-info step. phoneVerified reflects
// whether the submitted phone value has completed the verification sub-flow.
func ValidatePersonalInfo(req models.PersonalInfoRequest, phoneVerified bool, today time.Time) FieldErrors {
	errs := FieldErrors{}

	if req.FullName == "" {
		errs["fullName"] = "Full name is required"
	}
	if req.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegex.MatchString(req.Email) {
		errs["email"] = "Enter a valid email address"
	}
	if req.Phone == "" {
		errs["phone"] = "Phone number is required"
	} else if !phoneVerified {
		errs["phone"] = "Phone number needs verification"
	}
	if req.Designation == "" {
		errs["designation"] = "Designation is required"
	}
	if req.DateOfBirth == "" {
		errs["dateOfBirth"] = "Date of birth is required"
	} else {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			errs["dateOfBirth"] = "Enter a valid date of birth"
		} else if AgeAt(dob, today) < MinimumAge {
			errs["dateOfBirth"] = "You must be at least 18 years old"
		}
	}

	return errs
}

// ValidateClinicInfo checks the clinic-info step.
func ValidateClinicInfo(req models.ClinicInfoRequest, today time.Time) FieldErrors {
	errs := FieldErrors{}

	if req.ClinicName == "" {
		errs["clinicName"] = "Clinic name is required"
	}
	if req.ClinicType == "" {
		errs["clinicType"] = "Clinic type is required"
	} else if !containsString(models.ClinicTypes, req.ClinicType) {
		errs["clinicType"] = "Select a valid clinic type"
	}
	if req.RegistrationNumber == "" {
		errs["registrationNumber"] = "Registration number is required"
	}
	if req.EstablishmentYear == "" {
		errs["establishmentYear"] = "Establishment year is required"
	} else {
		year, err := strconv.Atoi(req.EstablishmentYear)
		if err != nil || year < 1800 || year > today.Year() {
			errs["establishmentYear"] = "Enter a valid establishment year"
		}
	}
	if req.Address == "" {
		errs["address"] = "Address is required"
	}

	return errs
}

// ValidateDocuments checks the documents step against the committed document
// descriptors. The accreditation certificate is optional.
func ValidateDocuments(req models.DocumentsRequest, docs models.Documents) FieldErrors {
	errs := FieldErrors{}

	if docs.GovernmentID == nil {
		errs["governmentId"] = "Government ID is required"
	}
	if docs.RegistrationCertificate == nil {
		errs["registrationCertificate"] = "Registration certificate is required"
	}
	if req.Departments == "" {
		errs["departments"] = "Departments are required"
	}
	if req.DoctorsCount == "" {
		errs["doctorsCount"] = "Number of doctors is required"
	} else if n, err := strconv.Atoi(req.DoctorsCount); err != nil || n <= 0 {
		errs["doctorsCount"] = "Enter a valid number of doctors"
	}
	if req.CommunicationMode == "" {
		errs["communicationMode"] = "Communication mode is required"
	} else if !containsString(models.CommunicationModes, req.CommunicationMode) {
		errs["communicationMode"] = "Select a valid communication mode"
	}

	return errs
}
