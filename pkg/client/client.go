package client

import (
	"context"
	"time"

	"roomly/pkg/logger"
)

// Client holds the external connections a service owns. Connections are set
// lazily so jobs that only need Mongo do not dial anything else.
type Client struct {
	Mongo *MongoClient

	log *logger.Logger
}

func NewClient(log *logger.Logger) *Client {
	return &Client{log: log}
}

func (c *Client) SetMongo(mongoURI string, connTimeout time.Duration) {
	c.Mongo = NewMongoClient(c.log, mongoURI, connTimeout)
}

func (c *Client) GracefulShutdown() {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Client.Disconnect(ctx); err != nil {
			c.log.Error("Failed to disconnect MongoDB client", "error", err)
			return
		}
		c.log.Info("MongoDB client disconnected")
	}
}
