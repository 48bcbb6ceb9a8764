package models

import "time"

// ClinicDocumentRef points at an uploaded onboarding document in storage.
type ClinicDocumentRef struct {
	Field    string `json:"field" bson:"field"`
	PublicID string `json:"publicId" bson:"publicId"`
	Name     string `json:"name" bson:"name"`
	Type     string `json:"type" bson:"type"`
	Size     int64  `json:"size" bson:"size"`
}

// ClinicAdmin is the administrator captured during onboarding.
type ClinicAdmin struct {
	FullName     string `json:"fullName" bson:"fullName"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone" bson:"phone"`
	Designation  string `json:"designation" bson:"designation"`
	DateOfBirth  string `json:"dateOfBirth" bson:"dateOfBirth"`
	ProfilePhoto string `json:"profilePhoto,omitempty" bson:"profilePhoto,omitempty"`
}

// Clinic is the persisted record built from a completed onboarding wizard.
type Clinic struct {
	ID                 string              `json:"id" bson:"id"`
	Name               string              `json:"name" bson:"name"`
	ClinicType         string              `json:"clinicType" bson:"clinicType"`
	RegistrationNumber string              `json:"registrationNumber" bson:"registrationNumber"`
	EstablishmentYear  string              `json:"establishmentYear" bson:"establishmentYear"`
	Address            string              `json:"address" bson:"address"`
	Admin              ClinicAdmin         `json:"admin" bson:"admin"`
	Departments        string              `json:"departments" bson:"departments"`
	DoctorsCount       string              `json:"doctorsCount" bson:"doctorsCount"`
	CommunicationMode  string              `json:"communicationMode" bson:"communicationMode"`
	Documents          []ClinicDocumentRef `json:"documents,omitempty" bson:"documents,omitempty"`
	BillingCustomerID  string              `json:"billingCustomerId,omitempty" bson:"billingCustomerId,omitempty"`
	Status             string              `json:"status" bson:"status"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}
