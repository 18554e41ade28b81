package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

const collectionProfiles = "profiles"

// ProfileRepository implements ports.ProfileRepository using MongoDB.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(collectionProfiles)}
}

type mongoProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	User           primitive.ObjectID `bson:"user"`
	Company        string             `bson:"company,omitempty"`
	Website        string             `bson:"website,omitempty"`
	Location       string             `bson:"location,omitempty"`
	Bio            string             `bson:"bio,omitempty"`
	Status         string             `bson:"status"`
	GitHubUsername string             `bson:"githubusername,omitempty"`
	Skills         []string           `bson:"skills"`
	Social         domain.Social      `bson:"social"`
	CreatedAt      time.Time          `bson:"date"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (mp *mongoProfile) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:             mp.ID.Hex(),
		UserID:         mp.User.Hex(),
		Company:        mp.Company,
		Website:        mp.Website,
		Location:       mp.Location,
		Bio:            mp.Bio,
		Status:         mp.Status,
		GitHubUsername: mp.GitHubUsername,
		Skills:         mp.Skills,
		Social:         mp.Social,
		CreatedAt:      mp.CreatedAt.UTC(),
		UpdatedAt:      mp.UpdatedAt.UTC(),
	}
}

// FindByUserID treats a malformed user id as a missing profile.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"user": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var docs []mongoProfile
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	profiles := make([]*domain.Profile, 0, len(docs))
	for i := range docs {
		profiles = append(profiles, docs[i].toDomain())
	}
	return profiles, nil
}

// Upsert writes fields onto the profile owned by userID in a single
// findAndModify, creating it when absent.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, fields ports.ProfileFields) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: invalid user id %q", userID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"status":     fields.Status,
		"skills":     fields.Skills,
		"social":     fields.Social,
		"updated_at": now,
	}
	setIfPresent(set, "company", fields.Company)
	setIfPresent(set, "website", fields.Website)
	setIfPresent(set, "location", fields.Location)
	setIfPresent(set, "bio", fields.Bio)
	setIfPresent(set, "githubusername", fields.GitHubUsername)

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"date": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mp mongoProfile
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": oid}, update, opts).Decode(&mp); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": oid}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// EnsureIndexes creates the one-profile-per-user index.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_unique"),
		},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func setIfPresent(set bson.M, key, value string) {
	if value != "" {
		set[key] = value
	}
}
