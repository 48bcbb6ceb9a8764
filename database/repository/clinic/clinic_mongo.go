package clinicRepo

import (
	"context"
	"fmt"
	"time"

	"clinicore/database"
	"clinicore/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClinicRepo implements ClinicRepository using MongoDB.
type MongoClinicRepo struct {
	coll *mongo.Collection
}

// NewMongoClinicRepo creates a new instance of ClinicRepository using MongoDB.
func NewMongoClinicRepo() ClinicRepository {
	coll := database.MongoClient.Database("clinicore").Collection("clinics")
	repo := &MongoClinicRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoClinicRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "admin.phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "registrationNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByIDWithProjection retrieves a clinic by its unique ID using a projection.
// Pass nil for projection to retrieve the full document.
func (r *MongoClinicRepo) GetByIDWithProjection(id string, projection bson.M) (*models.Clinic, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var clinic models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&clinic); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch clinic with id %s: %w", id, err)
	}
	return &clinic, nil
}

// GetByPhone retrieves a clinic by its admin's phone number.
func (r *MongoClinicRepo) GetByPhone(phone string) (*models.Clinic, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var clinic models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"admin.phone": phone}).Decode(&clinic); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch clinic with phone %s: %w", phone, err)
	}
	return &clinic, nil
}

// PhoneExists reports whether a clinic admin already registered the phone.
func (r *MongoClinicRepo) PhoneExists(phone string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"admin.phone": phone}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check phone %s: %w", phone, err)
	}
	return count > 0, nil
}

// GetAllWithProjection retrieves all clinics with an optional projection.
func (r *MongoClinicRepo) GetAllWithProjection(projection bson.M) ([]models.Clinic, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find()
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve clinics: %w", err)
	}
	defer cursor.Close(ctx)

	var clinics []models.Clinic
	for cursor.Next(ctx) {
		var cl models.Clinic
		if err := cursor.Decode(&cl); err != nil {
			return nil, fmt.Errorf("failed to decode clinic: %w", err)
		}
		clinics = append(clinics, cl)
	}
	return clinics, nil
}

// Create inserts a new clinic document.
func (r *MongoClinicRepo) Create(clinic *models.Clinic) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, clinic)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

// Update modifies an existing clinic document.
func (r *MongoClinicRepo) Update(clinic *models.Clinic) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	clinic.UpdatedAt = time.Now()
	filter := bson.M{"id": clinic.ID}
	update := bson.M{"$set": clinic}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update clinic with id %s: %w", clinic.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("clinic with id %s not found", clinic.ID)
	}
	return nil
}

// Delete removes a clinic document by its ID.
func (r *MongoClinicRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete clinic with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("clinic with id %s not found", id)
	}
	return nil
}

// GetByID retrieves a clinic by its unique ID (full document).
func (r *MongoClinicRepo) GetByID(id string) (*models.Clinic, error) {
	return r.GetByIDWithProjection(id, nil)
}

// GetAll retrieves all clinics (full documents).
func (r *MongoClinicRepo) GetAll() ([]models.Clinic, error) {
	return r.GetAllWithProjection(nil)
}
