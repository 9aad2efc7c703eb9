// FILE: database/repository/ticket/ticket.go
package ticketRepo

import (
	"context"
	"fmt"

	"hestia/config"
	"hestia/database"
	"hestia/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository persists and queries service tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByCodigo(ctx context.Context, codigo string) (*models.Ticket, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Ticket, error)
}

type mongoTicketRepo struct {
	coll *mongo.Collection
}

// NewMongoTicketRepo returns a repository backed by the "tickets" collection.
func NewMongoTicketRepo() *mongoTicketRepo {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("tickets")
	return &mongoTicketRepo{coll: coll}
}

// Create inserts a new ticket.
func (r *mongoTicketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	res, err := r.coll.InsertOne(ctx, ticket)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", ticket.Codigo, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ticket.ID = oid
	}
	return nil
}

// GetByCodigo returns a ticket by its human-facing code.
func (r *mongoTicketRepo) GetByCodigo(ctx context.Context, codigo string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.coll.FindOne(ctx, bson.M{"codigo": codigo}).Decode(&ticket)
	if err != nil {
		return nil, fmt.Errorf("find ticket %s: %w", codigo, err)
	}
	return &ticket, nil
}

// ListRecent returns the newest tickets for the ops view.
func (r *mongoTicketRepo) ListRecent(ctx context.Context, limit int64) ([]models.Ticket, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}
