package resumes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resume-builder/resume/history"
	"resume-builder/resume/model"
	"resume-builder/resume/sharing"
)

// CollectionName is the Mongo collection holding resume documents.
const CollectionName = "resumes"

// MongoRepo implements Repo on a MongoDB collection. The view counter lives in a
// top-level field so CAS updates never overwrite it.
type MongoRepo struct {
	coll *mongodriver.Collection
}

type mongoResume struct {
	ID            string              `bson:"_id"`
	OwnerID       string              `bson:"owner_id"`
	Title         string              `bson:"title"`
	Content       model.Content       `bson:"content"`
	Customization model.Customization `bson:"customization"`
	Versions      []history.Snapshot  `bson:"versions"`
	Share         sharing.Settings    `bson:"share"`
	ShareID       string              `bson:"share_id"`
	Views         int64               `bson:"views"`
	Revision      int64               `bson:"revision"`
	CreatedAt     time.Time           `bson:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at"`
	DeletedAt     *time.Time          `bson:"deleted_at"`
}

// NewMongoRepo wraps coll and ensures its indexes.
func NewMongoRepo(ctx context.Context, coll *mongodriver.Collection) (*MongoRepo, error) {
	r := &MongoRepo{coll: coll}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureIndexes creates:
//   - owner listing: owner_id + updated_at(desc)
//   - share lookup: unique share_id, only for non-empty ids
func (r *MongoRepo) ensureIndexes(ctx context.Context) error {
	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("owner_updated_desc"),
		},
		{
			Keys: bson.D{{Key: "share_id", Value: 1}},
			Options: options.Index().
				SetName("share_id_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"share_id": bson.M{"$gt": ""}}),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

func toMongo(res Resume) mongoResume {
	share := cloneShare(res.Share)
	share.Views = 0
	return mongoResume{
		ID:            res.ID,
		OwnerID:       res.OwnerID,
		Title:         res.Title,
		Content:       res.Content,
		Customization: res.Customization,
		Versions:      res.Versions,
		Share:         share,
		ShareID:       res.Share.ShareID,
		Views:         res.Share.Views,
		Revision:      res.Revision,
		CreatedAt:     res.CreatedAt.UTC(),
		UpdatedAt:     res.UpdatedAt.UTC(),
		DeletedAt:     res.DeletedAt,
	}
}

func (d mongoResume) toResume() Resume {
	res := Resume{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Title:         d.Title,
		Content:       d.Content,
		Customization: d.Customization,
		Versions:      d.Versions,
		Share:         d.Share,
		Revision:      d.Revision,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		DeletedAt:     d.DeletedAt,
	}
	res.Share.Views = d.Views
	return res
}

func (r *MongoRepo) Create(ctx context.Context, res Resume) error {
	if _, err := r.coll.InsertOne(ctx, toMongo(res)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("mongo insert resume: %w", err)
	}
	return nil
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.M) (Resume, error) {
	var doc mongoResume
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, fmt.Errorf("mongo find resume: %w", err)
	}
	return doc.toResume(), nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (Resume, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetByShareID(ctx context.Context, shareID string) (Resume, error) {
	if shareID == "" {
		return Resume{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"share_id": shareID})
}

func (r *MongoRepo) ListByOwner(ctx context.Context, ownerID string, deleted bool, limit, offset int) ([]Resume, error) {
	filter := bson.M{"owner_id": ownerID, "deleted_at": nil}
	if deleted {
		filter["deleted_at"] = bson.M{"$ne": nil}
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list resumes: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Resume, 0)
	for cur.Next(ctx) {
		var doc mongoResume
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode resume: %w", err)
		}
		out = append(out, doc.toResume())
	}
	return out, cur.Err()
}

func (r *MongoRepo) Update(ctx context.Context, next Resume, expected int64) error {
	doc := toMongo(next)
	update := bson.M{"$set": bson.M{
		"title":         doc.Title,
		"content":       doc.Content,
		"customization": doc.Customization,
		"versions":      doc.Versions,
		"share":         doc.Share,
		"share_id":      doc.ShareID,
		"revision":      doc.Revision,
		"updated_at":    doc.UpdatedAt,
		"deleted_at":    doc.DeletedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": next.ID, "revision": expected}, update)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("mongo update resume: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": next.ID})
	if err != nil {
		return fmt.Errorf("mongo count resume: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete resume: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("mongo increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
