// Command dbtool creates the parceltrack database schema. Run it once
// against a fresh database before starting the service.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
    id uuid PRIMARY KEY,
    sender_id uuid NOT NULL,
    picker_id uuid,
    status integer NOT NULL,
    from_address text NOT NULL,
    to_address text NOT NULL,
    price_cents bigint NOT NULL,
    size integer NOT NULL,
    weight_grams bigint,
    notes text NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_deliveries_sender_id ON deliveries (sender_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_picker_id ON deliveries (picker_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries (status);
`

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file found, relying on process environment")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOrDefault("DB_HOST", "localhost"),
		envOrDefault("DB_PORT", "5432"),
		envOrDefault("DB_USER", "postgres"),
		envOrDefault("DB_PASSWORD", "postgres"),
		envOrDefault("DB_NAME", "parceltrack"),
		envOrDefault("DB_SSLMODE", "disable"))

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open postgres connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to reach postgres: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Infof("Schema applied to %s", envOrDefault("DB_NAME", "parceltrack"))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
