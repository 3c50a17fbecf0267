package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/teamflow/crm-api/internal/config"
	"github.com/teamflow/crm-api/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch args[0] {
	case "up":
		runMigrations(cfg)
	case "status":
		checkStatus(cfg)
	default:
		fmt.Printf("Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("Migrations completed successfully!")
}

func checkStatus(cfg *config.Config) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is not reachable: %v", err)
	}
	fmt.Println("Database connection OK")
}

func printUsage() {
	fmt.Println(`Usage: go run cmd/migrate/main.go <command>

Commands:
  up        Run schema migrations
  status    Check database connectivity

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status`)
}
