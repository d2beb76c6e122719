package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/victorivanov/complaintbox/internal/config"
	"github.com/victorivanov/complaintbox/internal/database"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: complaintbox-cli migrate [up|down]")
			fmt.Println()
			fmt.Println("Apply (default) or roll back database migrations.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL     PostgreSQL connection string (required)")
			fmt.Println("  MIGRATIONS_PATH  Migration source (default: file://migrations)")
			return
		}
		os.Exit(runMigrate(os.Args[2:]))
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: complaintbox-cli seed")
			fmt.Println()
			fmt.Println("Insert demo complaints into the configured store.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  STORE_DRIVER  postgres or bolt (default: postgres)")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string")
			fmt.Println("  BOLT_PATH     BoltDB file (default: complaints.db)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: complaintbox-cli health")
			fmt.Println()
			fmt.Println("Check if the complaintbox server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:4000)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("complaintbox-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: complaintbox-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Insert demo complaints")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'complaintbox-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate(args []string) int {
	dbURL := requireEnv("DATABASE_URL")
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	if direction != "up" && direction != "down" {
		fmt.Fprintf(os.Stderr, "error: unknown direction %q (want up or down)\n", direction)
		return 1
	}

	fmt.Println("connecting to database...")
	m, err := migrate.New(envOr("MIGRATIONS_PATH", "file://migrations"), dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Printf("running migrations (%s)...\n", direction)
	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Steps(-1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		fmt.Println("no migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Printf("no new migrations (current version: %d)\n", v)
	default:
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

var demoComplaints = []models.Complaint{
	{Name: "Asha Verma", Age: 34, Problem: "Street light on 5th Cross has been out for two weeks."},
	{Name: "Daniel Okafor", Age: 58, Problem: "Overflowing garbage bin near the bus stop."},
	{Name: "Lin Chen", Age: 22, Problem: "Pothole in front of the library damages bicycles.",
		// Smallest valid GIF: a single transparent pixel.
		Photo: models.NewAttachment([]byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;"), "image/gif"),
	},
}

func runSeed() int {
	cfg := config.Load()
	ctx := context.Background()

	sf, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	fmt.Printf("opening %s store...\n", cfg.StoreDriver)
	var repo database.ComplaintRepository
	if cfg.StoreDriver == config.DriverBolt {
		repo, err = database.OpenBoltRepository(cfg.BoltPath, sf)
	} else {
		pool, perr := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if perr == nil {
			repo = database.NewComplaintRepository(pool, sf)
		}
		err = perr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening store: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Println("creating complaints...")
	for i := range demoComplaints {
		c := demoComplaints[i]
		if err := repo.Create(ctx, &c); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating complaint %q: %v\n", c.Name, err)
			return 1
		}
		fmt.Printf("  %d  %s\n", c.ID, c.Name)
	}

	fmt.Println()
	fmt.Printf("seed complete: %d complaints\n", len(demoComplaints))
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:4000")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
