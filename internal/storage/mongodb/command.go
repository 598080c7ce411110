package mongodb

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
	"github.com/nikmy/dynmodel/pkg/logger"
	mng "github.com/nikmy/dynmodel/pkg/mongotools"
)

// New connects to MongoDB. Every resource maps to a collection of
// cfg.Database with the same name.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Command, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetTimeout(cfg.Timeout)

	if cfg.Auth.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
	}
	if cfg.Pool.MinSize != 0 {
		opts.SetMinPoolSize(cfg.Pool.MinSize)
	}
	if cfg.Pool.MaxSize != 0 {
		opts.SetMaxPoolSize(cfg.Pool.MaxSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	return &Command{
		db:  client.Database(cfg.Database),
		log: log.With("mongo_command"),
	}, nil
}

type Command struct {
	db  *mongo.Database
	log logger.Logger
}

func (c *Command) All(ctx context.Context, resource string) ([]model.Attributes, error) {
	cur, err := c.db.Collection(resource).Find(ctx, mng.All())
	if err != nil {
		return nil, errors.WrapFailf(err, "find all in %s", resource)
	}

	docs, err := mng.DecodeAll[bson.M](ctx, cur)
	if err != nil {
		return nil, errors.WrapFailf(err, "read all from %s", resource)
	}

	rows := make([]model.Attributes, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, fromDocument(doc))
	}
	return rows, nil
}

func (c *Command) Find(ctx context.Context, resource string, id any) (model.Attributes, error) {
	r := c.db.Collection(resource).FindOne(ctx, idFilter(id))
	err := r.Err()

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &model.NotFoundError{Resource: resource, ID: id}
	}

	if err != nil {
		return nil, errors.WrapFailf(err, "find %s by id", resource)
	}

	var doc bson.M
	err = r.Decode(&doc)
	if err != nil {
		return nil, errors.WrapFailf(err, "decode %s", resource)
	}

	return fromDocument(doc), nil
}

func (c *Command) Update(ctx context.Context, resource string, id any, attrs model.Attributes) error {
	fields := toDocument(attrs)
	delete(fields, mng.KeyObjectID)
	if len(fields) == 0 {
		_, err := c.Find(ctx, resource, id)
		return err
	}

	r, err := c.db.Collection(resource).UpdateOne(ctx, idFilter(id), mng.SetAll(fields))
	if err != nil {
		return errors.WrapFailf(err, "update %s", resource)
	}

	if r.MatchedCount == 0 {
		return &model.NotFoundError{Resource: resource, ID: id}
	}

	return nil
}

// Create inserts the record under its own id, or under a fresh ObjectID
// hex string when it has none, and reports the id back.
func (c *Command) Create(ctx context.Context, resource string, attrs model.Attributes) (model.Attributes, error) {
	doc := toDocument(attrs)

	id, ok := doc[mng.KeyObjectID]
	if !ok {
		id = primitive.NewObjectID().Hex()
		doc[mng.KeyObjectID] = id
	}

	_, err := c.db.Collection(resource).InsertOne(ctx, doc)
	if err != nil {
		return nil, errors.WrapFailf(err, "insert into %s", resource)
	}

	c.log.WithField("resource", resource).Debugf("created %v", id)
	return model.Attributes{model.KeyID: id}, nil
}

func (c *Command) Close(ctx context.Context) error {
	err := c.db.Client().Disconnect(ctx)
	return errors.WrapFail(err, "close mongo db connection")
}

// idFilter matches the raw id and the other forms a string id can take
// in a document: the ObjectID a hex string encodes and the number a
// numeric string spells. MongoDB compares numbers across int and double.
func idFilter(id any) bson.M {
	s, ok := id.(string)
	if !ok {
		return mng.ID(id)
	}

	forms := bson.A{s}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		forms = append(forms, oid)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		forms = append(forms, n)
	}

	if len(forms) == 1 {
		return mng.ID(s)
	}
	return mng.ID(bson.M{"$in": forms})
}

func toDocument(attrs model.Attributes) bson.M {
	doc := make(bson.M, len(attrs))
	for k, v := range attrs {
		if k == model.KeyID {
			k = mng.KeyObjectID
		}
		doc[k] = v
	}
	return doc
}

func fromDocument(doc bson.M) model.Attributes {
	attrs := make(model.Attributes, len(doc))
	for k, v := range doc {
		if k == mng.KeyObjectID {
			k = model.KeyID
			if oid, ok := v.(primitive.ObjectID); ok {
				v = oid.Hex()
			}
		}
		attrs[k] = v
	}
	return attrs
}
