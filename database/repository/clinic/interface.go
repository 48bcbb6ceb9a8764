package clinicRepo

import (
	"clinicore/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ClinicRepository defines methods for clinic data access.
type ClinicRepository interface {
	// GetByID retrieves a clinic by its unique ID.
	GetByID(id string) (*models.Clinic, error)
	// GetAll retrieves all clinics.
	GetAll() ([]models.Clinic, error)
	// GetByPhone retrieves a clinic whose admin registered with the given phone.
	GetByPhone(phone string) (*models.Clinic, error)
	// PhoneExists reports whether any clinic admin already registered the phone.
	PhoneExists(phone string) (bool, error)
	// Create inserts a new clinic record.
	Create(clinic *models.Clinic) error
	// Update modifies an existing clinic record.
	Update(clinic *models.Clinic) error
	// Delete removes a clinic record by its ID.
	Delete(id string) error
	// GetByIDWithProjection retrieves a clinic by its unique ID with a projection.
	GetByIDWithProjection(id string, projection bson.M) (*models.Clinic, error)
	// GetAllWithProjection retrieves all clinics with an optional projection.
	GetAllWithProjection(projection bson.M) ([]models.Clinic, error)
}
