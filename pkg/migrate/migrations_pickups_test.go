package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anafuentes/pressroute-backend/pkg/migrate"
)

func TestPickupRequestsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_pickup_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no pickup requests migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pickup_requests",
		"REFERENCES routes(id) ON DELETE RESTRICT",
		"CHECK (status IN ('pending', 'confirmed', 'in_transit', 'delivered', 'cancelled'))",
		"CHECK (dropoff_date >= pickup_date)",
		"DROP TABLE IF EXISTS pickup_requests",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
