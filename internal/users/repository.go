package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when a write would break a unique constraint.
	ErrDuplicate = errors.New("user already exists")
	// ErrValidation is returned when a record misses required fields.
	ErrValidation = errors.New("invalid user record")
)

// UserRepository defines persistence operations for synced users.
// Update and Delete return (nil, nil) when no record matches.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	UpdateByExternalID(ctx context.Context, externalID string, upd models.UserUpdate) (*models.User, error)
	DeleteByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col    *mongo.Collection
	schema *Schema
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col, schema: UserSchema()}
}

// EnsureIndexes registers the unique indexes of the user schema.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	return r.schema.EnsureIndexes(ctx, r.col)
}

// Ping reports whether the backing database answers.
func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	rec := *u
	r.schema.Apply(&rec)
	if err := r.schema.Validate(&rec); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec.ID = ""
	rec.CreatedAt = now
	rec.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid.Hex()
	}
	return &rec, nil
}

func (r *MongoUserRepository) UpdateByExternalID(ctx context.Context, externalID string, upd models.UserUpdate) (*models.User, error) {
	filter := bson.M{"externalId": externalID}
	set := bson.M{"$set": bson.M{
		"firstName": upd.FirstName,
		"lastName":  upd.LastName,
		"username":  upd.Username,
		"photoUrl":  upd.PhotoURL,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, set, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &updated, nil
}

func (r *MongoUserRepository) DeleteByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var deleted models.User
	if err := r.col.FindOneAndDelete(ctx, bson.M{"externalId": externalID}).Decode(&deleted); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return &deleted, nil
}

func (r *MongoUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
