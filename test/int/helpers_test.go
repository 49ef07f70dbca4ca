package int

import (
	"context"
	"os"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"scrimbot/store"
)

func mongoURI() string {
	if uri, ok := os.LookupEnv("MONGO_URI"); ok {
		return uri
	}

	return "mongodb://localhost:27017"
}

func connectMongo() *mongo.Client {
	m, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI()))
	Expect(err).To(BeNil())

	return m
}

func cleanupMongo(m *mongo.Client) {
	db := m.Database("scrims")

	collections := []string{"teams", "registrations"}
	for _, v := range collections {
		_, err := db.Collection(v).DeleteMany(context.Background(), bson.M{})
		Expect(err).To(BeNil())
	}
}

func newStore(m *mongo.Client) *store.Store {
	s := store.New(m)
	Expect(s.EnsureIndexes(context.Background())).To(BeNil())

	return s
}
