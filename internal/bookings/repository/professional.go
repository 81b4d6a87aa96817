package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "proconnect/internal/bookings/errors"
	"proconnect/pkg/config"
	"proconnect/pkg/model"
)

// ProfessionalRepository reads the provider profiles the booking engine
// depends on. The profiles themselves are owned and written by the profiles
// service; this side only ever looks them up.
type ProfessionalRepository interface {
	FindByID(ctx context.Context, id string) (*model.Professional, error)
}

type mongoProfessionalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProfessionalRepository(cfg *config.Config) ProfessionalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProfessionalRepository{
		cfg:        cfg,
		collection: db.Collection("Professionals"),
	}
}

func (r *mongoProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var professional model.Professional
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&professional)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}

	return &professional, nil
}
