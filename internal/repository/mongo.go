package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

type MongoOpts struct {
	Host     string
	Port     int
	Database string
	// URI overrides Host and Port when set
	URI string
}

func (o MongoOpts) uri() string {
	if o.URI != "" {
		return o.URI
	}

	return fmt.Sprintf("mongodb://%s:%d", o.Host, o.Port)
}

type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
	files  *mongo.Collection
}

// NewMongo connects, pings and makes sure the indexes the repository relies
// on exist.
func NewMongo(ctx context.Context, o MongoOpts) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(o.uri()).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb, %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb, %w", err)
	}

	db := client.Database(o.Database)
	m := &Mongo{
		client: client,
		users:  db.Collection(usersCollection),
		files:  db.Collection(filesCollection),
	}

	_, err = m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create users index, %w", err)
	}

	_, err = m.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create files index, %w", err)
	}

	zap.L().Debug("Connected to mongodb", zap.String("database", o.Database))

	return m, nil
}

func mongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrConflict
	}

	return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}

	return &u, nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id model.RecordID) (*model.User, error) {
	var u model.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}

	return &u, nil
}

func (m *Mongo) InsertUser(ctx context.Context, u *model.User) error {
	u.ID = model.NewRecordID()

	if _, err := m.users.InsertOne(ctx, u); err != nil {
		u.ID = model.RecordID{}
		return mongoErr(err)
	}

	return nil
}

func (m *Mongo) CountUsers(ctx context.Context) (int64, error) {
	n, err := m.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, mongoErr(err)
	}

	return n, nil
}

func (m *Mongo) InsertFile(ctx context.Context, f *model.File) error {
	f.ID = model.NewRecordID()

	if _, err := m.files.InsertOne(ctx, f); err != nil {
		f.ID = model.RecordID{}
		return mongoErr(err)
	}

	return nil
}

func (m *Mongo) FindFileByID(ctx context.Context, id model.RecordID) (*model.File, error) {
	var f model.File
	if err := m.files.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&f); err != nil {
		return nil, mongoErr(err)
	}

	return &f, nil
}

func (m *Mongo) FindFileByIDForOwner(ctx context.Context, id, userID model.RecordID) (*model.File, error) {
	var f model.File
	err := m.files.
		FindOne(ctx, bson.M{"_id": id.ObjectID(), "userId": userID.ObjectID()}).
		Decode(&f)
	if err != nil {
		return nil, mongoErr(err)
	}

	return &f, nil
}

func (m *Mongo) ListFiles(ctx context.Context, userID, parentID model.RecordID, page int) ([]model.File, error) {
	// parentID marshals to 0 for the root, matching how root files are stored
	filter := bson.M{"userId": userID.ObjectID(), "parentId": parentID}

	cur, err := m.files.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skipFor(page))).
		SetLimit(PageSize))
	if err != nil {
		return nil, mongoErr(err)
	}

	files := []model.File{}
	if err := cur.All(ctx, &files); err != nil {
		return nil, mongoErr(err)
	}

	return files, nil
}

func (m *Mongo) SetPublic(ctx context.Context, id model.RecordID, public bool) (*model.File, error) {
	var f model.File
	err := m.files.
		FindOneAndUpdate(ctx,
			bson.M{"_id": id.ObjectID()},
			bson.M{"$set": bson.M{"isPublic": public}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).
		Decode(&f)
	if err != nil {
		return nil, mongoErr(err)
	}

	return &f, nil
}

func (m *Mongo) CountFiles(ctx context.Context) (int64, error) {
	n, err := m.files.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, mongoErr(err)
	}

	return n, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
