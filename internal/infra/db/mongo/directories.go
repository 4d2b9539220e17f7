package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

type ApartmentDirectory struct {
	db *mongo.Database
}

func NewApartmentDirectory(client *Client) *ApartmentDirectory {
	return &ApartmentDirectory{db: client.DB}
}

type apartmentDocument struct {
	ID           int64  `bson:"_id"`
	Name         string `bson:"name"`
	VillageID    int64  `bson:"village_id"`
	Phase        int    `bson:"phase"`
	OwnerID      int64  `bson:"owner_id"`
	PayingStatus string `bson:"paying_status,omitempty"`
	SalesStatus  string `bson:"sales_status,omitempty"`
}

func (d apartmentDocument) toDomain() *apartment.Apartment {
	return &apartment.Apartment{
		ID:           apartment.ID(d.ID),
		Name:         d.Name,
		VillageID:    village.ID(d.VillageID),
		Phase:        d.Phase,
		OwnerID:      user.ID(d.OwnerID),
		PayingStatus: apartment.PayingStatus(d.PayingStatus),
		SalesStatus:  d.SalesStatus,
	}
}

func (d *ApartmentDirectory) ByID(ctx context.Context, id apartment.ID) (*apartment.Apartment, error) {
	var doc apartmentDocument
	err := d.db.Collection(colApartments).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apartment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (d *ApartmentDirectory) List(ctx context.Context, villageID village.ID, phase int) ([]*apartment.Apartment, error) {
	filter := bson.M{}
	if villageID > 0 {
		filter["village_id"] = int64(villageID)
		if phase > 0 {
			filter["phase"] = phase
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.db.Collection(colApartments).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*apartment.Apartment
	for cursor.Next(ctx) {
		var doc apartmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

type VillageDirectory struct {
	db *mongo.Database
}

func NewVillageDirectory(client *Client) *VillageDirectory {
	return &VillageDirectory{db: client.DB}
}

type villageDocument struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

func (d *VillageDirectory) ByID(ctx context.Context, id village.ID) (*village.Village, error) {
	var doc villageDocument
	err := d.db.Collection(colVillages).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, village.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &village.Village{ID: village.ID(doc.ID), Name: doc.Name}, nil
}

func (d *VillageDirectory) List(ctx context.Context) ([]*village.Village, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.db.Collection(colVillages).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*village.Village
	for cursor.Next(ctx) {
		var doc villageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &village.Village{ID: village.ID(doc.ID), Name: doc.Name})
	}
	return out, cursor.Err()
}

type UserRepository struct {
	db *mongo.Database
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{db: client.DB}
}

type userDocument struct {
	ID           int64     `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDocument) toDomain() *user.User {
	return &user.User{
		ID:           user.ID(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		Role:         user.Role(d.Role),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": int64(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": user.NormalizeEmail(email)})
}

func (r *UserRepository) ByNameAndRole(ctx context.Context, name string, role user.Role) (*user.User, error) {
	return r.findOne(ctx, bson.M{"name": strings.TrimSpace(name), "role": string(role)})
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	col := r.db.Collection(colUsers)
	if u.ID == 0 {
		id, err := nextID(ctx, r.db, "users")
		if err != nil {
			return err
		}
		u.ID = user.ID(id)
	}
	doc := userDocument{
		ID:           int64(u.ID),
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	_, err := col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Unique index on email; the caller re-rolls generated addresses.
		return user.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	err := r.db.Collection(colUsers).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
