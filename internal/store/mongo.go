package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecomstack/backend/internal/models"
)

// maxIDAttempts bounds the retries when two inserts race for the same product id.
const maxIDAttempts = 5

// userDoc is the users collection layout. cartData keeps string keys "0".."299".
type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	CartData map[string]int     `bson:"cartData"`
	Date     time.Time          `bson:"date"`
}

func (d *userDoc) user() *models.User {
	return &models.User{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
		Cart:     models.CartFromStrings(d.CartData),
		Date:     d.Date,
	}
}

// MongoStore keeps products and users in MongoDB.
type MongoStore struct {
	products *mongo.Collection
	users    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		products: db.Collection("products"),
		users:    db.Collection("users"),
	}
}

// EnsureIndexes creates the unique indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo products index: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	return nil
}

// InsertProduct assigns the next id (highest existing + 1) and stores p.
// The unique index on id turns a concurrent collision into a retry.
func (s *MongoStore) InsertProduct(ctx context.Context, p *models.Product) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.nextProductID(ctx)
		if err != nil {
			return err
		}
		p.ID = id
		_, err = s.products.InsertOne(ctx, p)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("mongo insert product: %w", err)
		}
		return nil
	}
	return fmt.Errorf("mongo insert product: %w", models.ErrConflict)
}

func (s *MongoStore) nextProductID(ctx context.Context) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetProjection(bson.M{"id": 1})
	var last struct {
		ID int `bson:"id"`
	}
	err := s.products.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("mongo last product: %w", err)
	}
	return last.ID + 1, nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id int) error {
	if _, err := s.products.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("mongo delete product: %w", err)
	}
	return nil
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) ListProductsByCategory(ctx context.Context, category string, limit int) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findProducts(ctx, bson.M{"category": category}, opts)
}

func (s *MongoStore) findProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongo decode products: %w", err)
	}
	return products, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.Date.IsZero() {
		u.Date = time.Now().UTC()
	}
	if u.Cart == nil {
		u.Cart = models.NewCart()
	}
	doc := userDoc{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		CartData: u.Cart.Strings(),
		Date:     u.Date,
	}
	res, err := s.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo insert user: %w", models.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.user(), nil
}

func (s *MongoStore) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc userDoc
	opts := options.FindOne().SetProjection(bson.M{"cartData": 1})
	err = s.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get cart: %w", err)
	}
	return models.CartFromStrings(doc.CartData), nil
}

// IncrementCartSlot adds one to the slot with a single atomic $inc.
func (s *MongoStore) IncrementCartSlot(ctx context.Context, userID string, slot int) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{cartField(slot): 1}},
	)
	if err != nil {
		return fmt.Errorf("mongo increment cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DecrementCartSlot subtracts one from the slot unless it is already zero.
func (s *MongoStore) DecrementCartSlot(ctx context.Context, userID string, slot int) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.ErrNotFound
	}
	field := cartField(slot)
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, field: bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{field: -1}},
	)
	if err != nil {
		return fmt.Errorf("mongo decrement cart: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// Nothing matched: either the slot is already at zero or the user is gone.
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo decrement cart: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func cartField(slot int) string {
	return "cartData." + strconv.Itoa(slot)
}
