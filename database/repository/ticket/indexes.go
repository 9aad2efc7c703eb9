// FILE: database/repository/ticket/indexes.go
package ticketRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the tickets collection.
func (r *mongoTicketRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on the human-facing ticket code.
		{
			Keys:    bson.D{{Key: "codigo", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_codigo"),
		},
		// Hotel + recency, the ops dashboard's primary query.
		{
			Keys:    bson.D{{Key: "hotelId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("hotel_created_idx"),
		},
		// Open tickets approaching their SLA due time.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "dueAt", Value: 1}},
			Options: options.Index().SetName("status_due_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}
