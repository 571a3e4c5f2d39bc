package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/medibook/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding appointment documents.
const CollectionName = "appointments"

// MongoRepository stores appointments as documents keyed by their UUID.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// EnsureIndexes creates the patientId index used by patient listings.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create appointment indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Insert(ctx context.Context, a *model.Appointment) error {
	a.PrepareInsert()
	if err := a.ValidateStatus(); err != nil {
		return err
	}
	// Mongo stores milliseconds; truncate so the returned record matches
	// what a later read yields.
	now := r.now().UTC().Truncate(time.Millisecond)
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]model.Appointment, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoRepository) FindByPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	return r.find(ctx, bson.D{{Key: "patientId", Value: patientID}})
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (model.Appointment, error) {
	var appt model.Appointment
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Appointment{}, ErrRecordNotFound
	}
	if err != nil {
		return model.Appointment{}, fmt.Errorf("find appointment %s: %w", id, err)
	}
	return appt, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, a *model.Appointment) error {
	if err := a.ValidateStatus(); err != nil {
		return err
	}
	updatedAt := r.now().UTC().Truncate(time.Millisecond)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: a.Status},
		{Key: "updatedAt", Value: updatedAt},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, update)
	if err != nil {
		return fmt.Errorf("update appointment %s status: %w", a.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	a.UpdatedAt = updatedAt
	return nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D) ([]model.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	var appts []model.Appointment
	if err := cur.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appts, nil
}
