package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/serenify-journal/internal/logger"
)

const defaultMongoDatabase = "journal"

// ConnectMongo opens and pings a MongoDB client and returns the database the
// document store should use: name if set, else the path of the URI, else
// "journal".
func ConnectMongo(mongoURI, name string, log logger.Logger) (*mongo.Client, *mongo.Database, error) {
	// Atlas can be slow on the first handshake.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Infof("Attempting to connect to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	if name == "" {
		name = mongoDatabaseName(mongoURI)
	}
	log.Infof("✅ Connected to MongoDB (database %q)", name)
	return client, client.Database(name), nil
}

// mongoDatabaseName extracts the database from mongodb://hosts/<db>?opts.
// Seed lists with several hosts are not valid URLs, so no url.Parse here.
func mongoDatabaseName(mongoURI string) string {
	_, rest, ok := strings.Cut(mongoURI, "://")
	if !ok {
		return defaultMongoDatabase
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return defaultMongoDatabase
	}
	db, _, _ := strings.Cut(path, "?")
	if db == "" {
		return defaultMongoDatabase
	}
	return db
}

func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
