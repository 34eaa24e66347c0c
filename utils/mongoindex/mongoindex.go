package mongoindex

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Index struct {
	Keys   bson.D
	Unique bool
	// Partial restricts the index to documents matching the filter.
	Partial bson.M
}

// Name follows the driver's default "<key>_<value>" scheme so an index
// created by hand is recognised.
func (i Index) Name() string {
	parts := make([]string, 0, len(i.Keys))
	for _, k := range i.Keys {
		parts = append(parts, fmt.Sprintf("%v_%v", k.Key, k.Value))
	}
	return strings.Join(parts, "_")
}

func (i Index) model() mongo.IndexModel {
	opts := options.Index().SetBackground(true).SetUnique(i.Unique)
	if i.Partial != nil {
		opts.SetPartialFilterExpression(i.Partial)
	}
	return mongo.IndexModel{Keys: i.Keys, Options: opts}
}

// Ensure creates the indexes c does not have yet. Existing indexes are
// matched by name only; their options are never altered.
func Ensure(ctx context.Context, c *mongo.Collection, indexes ...Index) error {
	existing, err := names(ctx, c)
	if err != nil {
		return err
	}

	var missing []mongo.IndexModel
	for _, idx := range indexes {
		if _, ok := existing[idx.Name()]; !ok {
			missing = append(missing, idx.model())
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if _, err := c.Indexes().CreateMany(ctx, missing); err != nil {
		return fmt.Errorf("create indexes on %s: %w", c.Name(), err)
	}
	return nil
}

func names(ctx context.Context, c *mongo.Collection) (map[string]struct{}, error) {
	cur, err := c.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	found := make(map[string]struct{})
	for cur.Next(ctx) {
		var spec struct {
			Name string `bson:"name"`
		}
		if err := cur.Decode(&spec); err != nil {
			return nil, err
		}
		found[spec.Name] = struct{}{}
	}
	return found, cur.Err()
}
