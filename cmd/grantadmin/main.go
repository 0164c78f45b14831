// grantadmin sets or clears the admin custom claim on a user account.
// The claim is read at login and carried in the token.
//
// Usage: grantadmin <userID> [true|false]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrandria/hospital-api/internal/config"
	"github.com/hrandria/hospital-api/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: grantadmin <userID> [true|false]")
		os.Exit(1)
	}

	userID, err := primitive.ObjectIDFromHex(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user ID %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	value := true
	if len(os.Args) > 2 {
		value = os.Args[2] == "true"
	}

	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to MongoDB: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	st := store.NewMongo(client, cfg.MongoDatabase, zerolog.Nop())
	if err := st.SetUserAdmin(ctx, userID, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting admin claim: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set admin=%v for %s\n", value, userID.Hex())
}
