package docstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"resume-builder/internal/shared/telemetry"
)

const defaultDBName = "resume_builder"

// Mongo holds a connected client and the database named by the URI path.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*Mongo, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("mongo: empty MONGO_URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	name := DatabaseFromURI(uri)
	telemetry.Info("mongo.connected", map[string]any{"database": name})
	return &Mongo{client: cli, db: cli.Database(name)}, nil
}

// Collection returns a handle to a collection in the connected database.
func (m *Mongo) Collection(name string) *mongodriver.Collection {
	return m.db.Collection(name)
}

// Ping checks the primary, for health probes.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// DatabaseFromURI extracts the database name from the URI path, falling back to a default.
func DatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
