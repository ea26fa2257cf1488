package main

import (
	"regexp"
	"strconv"
	"testing"
)

func TestMigrationFilenamePattern(t *testing.T) {
	pattern := regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_core_tables.sql", true, 1, "create_core_tables"},
		{"0002_create_debt_tables.sql", true, 2, "create_debt_tables"},
		{"001_invalid.sql", false, 0, ""},        // wrong number format
		{"0001_test", false, 0, ""},              // missing .sql
		{"0001.sql", false, 0, ""},               // missing name
		{"invalid_0001_test.sql", false, 0, ""},  // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := pattern.FindStringSubmatch(tt.filename)
			if (matches != nil) != tt.valid {
				t.Fatalf("match = %v, want valid = %v", matches != nil, tt.valid)
			}
			if !tt.valid {
				return
			}

			version, err := strconv.Atoi(matches[1])
			if err != nil || version != tt.version {
				t.Errorf("version = %d (%v), want %d", version, err, tt.version)
			}
			if matches[2] != tt.name {
				t.Errorf("name = %q, want %q", matches[2], tt.name)
			}
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("MIGRATE_TEST_KEY", "from-env")
	if got := envOr("MIGRATE_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("envOr() = %q, want from-env", got)
	}
	if got := envOr("MIGRATE_TEST_KEY_UNSET", "fallback"); got != "fallback" {
		t.Errorf("envOr() = %q, want fallback", got)
	}
}
