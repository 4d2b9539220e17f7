package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
)

// OccupancyViewMaterializer rebuilds the apartment_occupancy collection, a
// derived cache of which apartment is occupied by which booking right now.
// Rebuilt wholesale after every booking write; the row count is bounded by
// the apartment inventory so a full rewrite stays cheap.
type OccupancyViewMaterializer struct {
	db *mongo.Database
	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

func NewOccupancyViewMaterializer(client *Client) *OccupancyViewMaterializer {
	return &OccupancyViewMaterializer{db: client.DB}
}

type occupancyRow struct {
	ApartmentID int64     `bson:"_id"`
	BookingID   int64     `bson:"booking_id"`
	UserID      int64     `bson:"user_id"`
	LeavingDate time.Time `bson:"leaving_date"`
	RefreshedAt time.Time `bson:"refreshed_at"`
}

func (v *OccupancyViewMaterializer) Refresh(ctx context.Context) error {
	now := time.Now()
	if v.Clock != nil {
		now = v.Clock()
	}
	today := daterange.Normalize(now)

	filter := bson.M{
		"status":       bson.M{"$in": bson.A{"Booked", "Checked In"}},
		"arrival_date": bson.M{"$lte": today},
		"leaving_date": bson.M{"$gte": today},
	}
	cursor, err := v.db.Collection(colBookings).Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	// Back-to-back bookings both contain the hand-over day; keep the one
	// that arrived most recently.
	latest := make(map[int64]bookingDocument)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		if prev, ok := latest[doc.ApartmentID]; !ok || doc.ArrivalDate.After(prev.ArrivalDate) {
			latest[doc.ApartmentID] = doc
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	rows := make([]interface{}, 0, len(latest))
	for _, doc := range latest {
		rows = append(rows, occupancyRow{
			ApartmentID: doc.ApartmentID,
			BookingID:   doc.ID,
			UserID:      doc.UserID,
			LeavingDate: doc.LeavingDate,
			RefreshedAt: now.UTC(),
		})
	}

	col := v.db.Collection(colOccupancyView)
	if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	_, err = col.InsertMany(ctx, rows)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two back-to-back refreshes raced; the later one wins.
		return nil
	}
	return err
}
