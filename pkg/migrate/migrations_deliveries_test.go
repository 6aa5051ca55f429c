package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDeliveriesMigrationGuaranteesOnePerDeal(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_deliveries.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no deliveries migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS deliveries",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_deliveries_deal ON deliveries (deal_id)",
		"status delivery_status NOT NULL DEFAULT 'ready'",
		"CREATE TABLE IF NOT EXISTS delivery_items",
		"FOREIGN KEY (delivery_id) REFERENCES deliveries(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS delivery_items",
		"DROP TABLE IF EXISTS deliveries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumMigrationCoversLifecycleStates(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_enums.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no enums migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE user_role AS ENUM ('seller', 'supplier', 'driver')",
		"CREATE TYPE deal_status AS ENUM ('dealing', 'accepted', 'assigning_driver', 'in_delivery', 'completed', 'rejected', 'canceled')",
		"CREATE TYPE delivery_status AS ENUM ('ready', 'scheduled', 'in_transit', 'delivered', 'canceled')",
		"CREATE TYPE driver_request_status AS ENUM ('pending', 'accepted', 'rejected')",
		"CREATE TYPE notification_type AS ENUM",
		"CREATE TYPE event_type_enum AS ENUM",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
