package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// BookingRepository persists bookings in a single collection. The apartment
// and occupant names plus village/phase are denormalized onto each document
// at write time so filtering, searching and sorting over "joined" columns
// stay single-collection; the lifecycle service reloads after every write,
// keeping the snapshots fresh.
type BookingRepository struct {
	db *mongo.Database
}

func NewBookingRepository(client *Client) *BookingRepository {
	return &BookingRepository{db: client.DB}
}

type bookingDocument struct {
	ID             int64     `bson:"_id"`
	ApartmentID    int64     `bson:"apartment_id"`
	ApartmentName  string    `bson:"apartment_name"`
	VillageID      int64     `bson:"village_id"`
	Phase          int       `bson:"phase"`
	UserID         int64     `bson:"user_id"`
	UserName       string    `bson:"user_name"`
	UserType       string    `bson:"user_type"`
	NumberOfPeople int       `bson:"number_of_people"`
	ArrivalDate    time.Time `bson:"arrival_date"`
	LeavingDate    time.Time `bson:"leaving_date"`
	Status         string    `bson:"status"`
	Notes          string    `bson:"notes,omitempty"`
	PersonName     string    `bson:"person_name,omitempty"`
	CreatedBy      int64     `bson:"created_by"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d bookingDocument) toDomain() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:             domainbooking.ID(d.ID),
		ApartmentID:    apartment.ID(d.ApartmentID),
		UserID:         user.ID(d.UserID),
		UserType:       domainbooking.UserType(d.UserType),
		NumberOfPeople: d.NumberOfPeople,
		ArrivalDate:    daterange.Normalize(d.ArrivalDate),
		LeavingDate:    daterange.Normalize(d.LeavingDate),
		Status:         domainbooking.Status(d.Status),
		Notes:          d.Notes,
		PersonName:     d.PersonName,
		CreatedBy:      user.ID(d.CreatedBy),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *BookingRepository) col() *mongo.Collection {
	return r.db.Collection(colBookings)
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	err := r.col().FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) ByApartment(ctx context.Context, apartmentID apartment.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"apartment_id": int64(apartmentID)}, bson.D{{Key: "arrival_date", Value: -1}}, 0, 0)
}

func (r *BookingRepository) ByUser(ctx context.Context, userID user.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": int64(userID)}, bson.D{{Key: "arrival_date", Value: -1}}, 0, 0)
}

func (r *BookingRepository) ActiveInRange(ctx context.Context, apartmentID apartment.ID, rng daterange.DateRange, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"apartment_id": int64(apartmentID),
		"status":       bson.M{"$ne": string(domainbooking.StatusCancelled)},
		// Strict inequality on both ends keeps back-to-back bookings legal.
		"arrival_date": bson.M{"$lt": rng.End},
		"leaving_date": bson.M{"$gt": rng.Start},
	}
	if exclude > 0 {
		filter["_id"] = bson.M{"$ne": int64(exclude)}
	}
	return r.find(ctx, filter, bson.D{{Key: "arrival_date", Value: 1}}, 0, 0)
}

func (r *BookingRepository) CurrentForApartment(ctx context.Context, apartmentID apartment.ID, now time.Time) (*domainbooking.Booking, error) {
	today := daterange.Normalize(now)
	filter := bson.M{
		"apartment_id": int64(apartmentID),
		"status":       bson.M{"$ne": string(domainbooking.StatusCheckedOut)},
		"arrival_date": bson.M{"$lte": today},
		"leaving_date": bson.M{"$gte": today},
	}
	var doc bookingDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "arrival_date", Value: -1}})
	err := r.col().FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) OccupyingInWindow(ctx context.Context, window daterange.DateRange, villageID village.ID) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status": bson.M{"$in": bson.A{
			string(domainbooking.StatusBooked),
			string(domainbooking.StatusCheckedIn),
		}},
		"arrival_date": bson.M{"$lte": window.End},
		"leaving_date": bson.M{"$gte": window.Start},
	}
	if villageID > 0 {
		filter["village_id"] = int64(villageID)
	}
	return r.find(ctx, filter, bson.D{{Key: "arrival_date", Value: 1}}, 0, 0)
}

func (r *BookingRepository) List(ctx context.Context, q domainbooking.ListQuery) ([]*domainbooking.Booking, int64, error) {
	filter := listFilter(q.Filter)
	// Same predicates for the count and the page; they cannot drift.
	total, err := r.col().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	sort := bson.D{{Key: sortColumn(q.SortBy), Value: dir}, {Key: "_id", Value: 1}}
	items, err := r.find(ctx, filter, sort, int64(q.Offset), int64(q.Limit))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *BookingRepository) Stats(ctx context.Context, now time.Time) (domainbooking.Stats, error) {
	stats := domainbooking.Stats{
		ByStatus:   make(map[domainbooking.Status]int64),
		ByUserType: make(map[domainbooking.UserType]int64),
	}

	byStatus, err := r.groupCounts(ctx, "$status")
	if err != nil {
		return stats, err
	}
	for key, n := range byStatus {
		stats.ByStatus[domainbooking.Status(key)] = n
		stats.Total += n
	}
	byUserType, err := r.groupCounts(ctx, "$user_type")
	if err != nil {
		return stats, err
	}
	for key, n := range byUserType {
		stats.ByUserType[domainbooking.UserType(key)] = n
	}

	stats.Current = stats.ByStatus[domainbooking.StatusCheckedIn]
	stats.Past = stats.ByStatus[domainbooking.StatusCheckedOut]

	today := daterange.Normalize(now)
	upcoming, err := r.col().CountDocuments(ctx, bson.M{
		"status":       string(domainbooking.StatusBooked),
		"arrival_date": bson.M{"$gt": today},
	})
	if err != nil {
		return stats, err
	}
	stats.Upcoming = upcoming
	return stats, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	id, err := nextID(ctx, r.db, "bookings")
	if err != nil {
		return err
	}
	b.ID = domainbooking.ID(id)
	doc, err := r.newDocument(ctx, b)
	if err != nil {
		return err
	}
	_, err = r.col().InsertOne(ctx, doc)
	return err
}

func (r *BookingRepository) Update(ctx context.Context, b *domainbooking.Booking) error {
	doc, err := r.newDocument(ctx, b)
	if err != nil {
		return err
	}
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) newDocument(ctx context.Context, b *domainbooking.Booking) (bookingDocument, error) {
	doc := bookingDocument{
		ID:             int64(b.ID),
		ApartmentID:    int64(b.ApartmentID),
		UserID:         int64(b.UserID),
		UserType:       string(b.UserType),
		NumberOfPeople: b.NumberOfPeople,
		ArrivalDate:    b.ArrivalDate,
		LeavingDate:    b.LeavingDate,
		Status:         string(b.Status),
		Notes:          b.Notes,
		PersonName:     b.PersonName,
		CreatedBy:      int64(b.CreatedBy),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}

	var apt struct {
		Name      string `bson:"name"`
		VillageID int64  `bson:"village_id"`
		Phase     int    `bson:"phase"`
	}
	err := r.db.Collection(colApartments).
		FindOne(ctx, bson.M{"_id": int64(b.ApartmentID)}).Decode(&apt)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return doc, err
	}
	doc.ApartmentName = apt.Name
	doc.VillageID = apt.VillageID
	doc.Phase = apt.Phase

	var usr struct {
		Name string `bson:"name"`
	}
	err = r.db.Collection(colUsers).
		FindOne(ctx, bson.M{"_id": int64(b.UserID)}).Decode(&usr)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return doc, err
	}
	doc.UserName = usr.Name
	return doc, nil
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(sort)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

func (r *BookingRepository) groupCounts(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.col().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Key] = row.Count
	}
	return out, cursor.Err()
}

func listFilter(f domainbooking.Filter) bson.M {
	filter := bson.M{}
	if f.ApartmentID > 0 {
		filter["apartment_id"] = int64(f.ApartmentID)
	}
	if f.UserID > 0 {
		filter["user_id"] = int64(f.UserID)
	}
	if f.UserType != "" {
		filter["user_type"] = string(f.UserType)
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.VillageID != 0 {
		// A negative scope means contradictory village constraints; it
		// matches no document on purpose.
		filter["village_id"] = int64(f.VillageID)
		if f.Phase > 0 {
			filter["phase"] = f.Phase
		}
	}
	if rng := dateBounds(f.ArrivalFrom, f.ArrivalTo); len(rng) > 0 {
		filter["arrival_date"] = rng
	}
	if rng := dateBounds(f.LeavingFrom, f.LeavingTo); len(rng) > 0 {
		filter["leaving_date"] = rng
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"user_name": pattern},
			bson.M{"person_name": pattern},
			bson.M{"apartment_name": pattern},
			bson.M{"notes": pattern},
		}
	}
	return filter
}

func dateBounds(from, to time.Time) bson.M {
	bounds := bson.M{}
	if !from.IsZero() {
		bounds["$gte"] = from
	}
	if !to.IsZero() {
		bounds["$lte"] = to
	}
	return bounds
}

func sortColumn(field string) string {
	switch field {
	case "arrival_date", "leaving_date", "status", "user_type",
		"apartment_name", "user_name", "created_at":
		return field
	}
	return "created_at"
}
