package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/repository"
)

const (
	shiftsCollection = "shifts"
	openShiftIndex   = "one_open_shift_per_operator"
)

var _ repository.ShiftRepository = (*MongoDBRepository)(nil)

// MongoDBRepository implements repository.ShiftRepository for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects, pings and ensures the shift indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: shiftsCollection,
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// ensureIndexes creates the partial unique index that makes a second open
// shift for the same operator fail with a duplicate key error.
func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "operator_id", Value: 1}},
			Options: options.Index().
				SetName(openShiftIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: models.ShiftOpen}}),
		},
		{
			Keys: bson.D{{Key: "operator_id", Value: 1}, {Key: "opened_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shift indexes: %w", err)
	}
	return nil
}

// CurrentShift returns the operator's open shift or nil.
func (r *MongoDBRepository) CurrentShift(ctx context.Context, operatorID string) (*models.Shift, error) {
	var shift models.Shift
	err := r.collection().FindOne(ctx, bson.D{
		{Key: "operator_id", Value: operatorID},
		{Key: "status", Value: models.ShiftOpen},
	}).Decode(&shift)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find current shift: %w", err)
	}
	return &shift, nil
}

// GetShift loads a shift by id.
func (r *MongoDBRepository) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	var shift models.Shift
	err := r.collection().FindOne(ctx, bson.D{{Key: "_id", Value: shiftID}}).Decode(&shift)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("shift %s: %w", shiftID, models.ErrShiftNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shift %s: %w", shiftID, err)
	}
	return &shift, nil
}

// CreateShift inserts an open shift. The partial unique index turns a
// concurrent second open into models.ErrInvalidState.
func (r *MongoDBRepository) CreateShift(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}

	_, err := r.collection().InsertOne(ctx, shift)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("operator %s already has an open shift: %w", shift.OperatorID, models.ErrInvalidState)
	}
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// CloseShift writes the closing fields only if the stored shift is still open.
func (r *MongoDBRepository) CloseShift(ctx context.Context, shift *models.Shift) error {
	filter := bson.D{
		{Key: "_id", Value: shift.ID},
		{Key: "status", Value: models.ShiftOpen},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: models.ShiftClosed},
		{Key: "closed_at", Value: shift.ClosedAt},
		{Key: "closing_cash", Value: shift.ClosingCash},
		{Key: "note", Value: shift.Note},
		{Key: "closing_denominations", Value: shift.ClosingDenominations},
		{Key: "closed_by", Value: shift.ClosedBy},
	}}}

	res, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to close shift %s: %w", shift.ID, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetShift(ctx, shift.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("shift %s is not open: %w", shift.ID, models.ErrInvalidState)
	}

	shift.Status = models.ShiftClosed
	return nil
}

// ListShifts returns matching shifts sorted by opened_at descending.
func (r *MongoDBRepository) ListShifts(ctx context.Context, query models.ShiftQuery) ([]models.Shift, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "opened_at", Value: -1}})
	if query.Limit > 0 {
		findOptions.SetLimit(int64(query.Limit))
	}

	cursor, err := r.collection().Find(ctx, shiftFilter(query), findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer cursor.Close(ctx)

	shifts := make([]models.Shift, 0)
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("failed to decode shifts: %w", err)
	}
	return shifts, nil
}

func shiftFilter(query models.ShiftQuery) bson.D {
	filter := bson.D{}
	if query.OperatorID != "" {
		filter = append(filter, bson.E{Key: "operator_id", Value: query.OperatorID})
	}
	if query.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: query.Status})
	}
	opened := bson.D{}
	if query.From != nil {
		opened = append(opened, bson.E{Key: "$gte", Value: *query.From})
	}
	if query.To != nil {
		opened = append(opened, bson.E{Key: "$lte", Value: *query.To})
	}
	if len(opened) > 0 {
		filter = append(filter, bson.E{Key: "opened_at", Value: opened})
	}
	return filter
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
