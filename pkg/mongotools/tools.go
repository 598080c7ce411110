package mongotools

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nikmy/dynmodel/pkg/errors"
)

const KeyObjectID = "_id"

func SetAll(fieldKVs ...bson.M) bson.M {
	s := make(bson.M, len(fieldKVs))
	for _, kv := range fieldKVs {
		for k, v := range kv {
			s[k] = v
		}
	}

	return bson.M{"$set": s}
}

func All() bson.M {
	return bson.M{}
}

func ID(id any) bson.M {
	return bson.M{KeyObjectID: id}
}

// DecodeAll drains the cursor, closing it when done.
func DecodeAll[T any](ctx context.Context, c *mongo.Cursor) ([]T, error) {
	defer c.Close(ctx)

	var decoded []T
	for c.Next(ctx) {
		var item T
		err := c.Decode(&item)
		if err != nil {
			return nil, errors.WrapFail(err, "decode item")
		}

		decoded = append(decoded, item)
	}

	return decoded, c.Err()
}
