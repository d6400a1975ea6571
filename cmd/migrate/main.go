package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookworm/bookworm/infrastructure/persistence/postgres"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or version")
	steps := flag.Int("steps", 0, "number of migrations to roll back with -mode down (0 = all)")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	switch strings.ToLower(*mode) {
	case "up":
		if err := postgres.MigrateUp(db); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("Migration up completed successfully")
	case "down":
		if err := postgres.MigrateDown(db, *steps); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("Migration down completed successfully")
	case "version":
		version, dirty, err := postgres.MigrationVersion(db)
		if err != nil {
			log.Fatalf("failed to read migration version: %v", err)
		}
		log.Printf("schema version %d (dirty=%t)", version, dirty)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}
