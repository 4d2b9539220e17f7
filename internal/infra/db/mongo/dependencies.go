package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
)

// DependencyCounter tallies records in the utility-reading, service-request,
// payment and email collections that reference a booking. Any nonzero count
// blocks deletion.
type DependencyCounter struct {
	db *mongo.Database
}

func NewDependencyCounter(client *Client) *DependencyCounter {
	return &DependencyCounter{db: client.DB}
}

func (c *DependencyCounter) Counts(ctx context.Context, id domainbooking.ID) (domainbooking.DependencyCounts, error) {
	var counts domainbooking.DependencyCounts
	filter := bson.M{"booking_id": int64(id)}

	targets := []struct {
		collection string
		out        *int64
	}{
		{colUtilityReadings, &counts.UtilityReadings},
		{colServiceRequests, &counts.ServiceRequests},
		{colPayments, &counts.Payments},
		{colEmails, &counts.Emails},
	}
	for _, t := range targets {
		n, err := c.db.Collection(t.collection).CountDocuments(ctx, filter)
		if err != nil {
			return domainbooking.DependencyCounts{}, err
		}
		*t.out = n
	}
	return counts, nil
}
