package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppliesFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fissh.toml")
	if err := os.WriteFile(path, []byte("[tank]\nvariance = 0.25\ncrawl_cadence = 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := parse("test", []string{"-config", path, "-crawl-cadence", "2"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tank.Variance != 0.25 || cfg.Tank.CrawlCadence != 2 {
		t.Fatalf("tank = %+v", cfg.Tank)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	if _, err := parse("test", []string{"-variance", "3"}, nil); err == nil {
		t.Fatal("expected validation error")
	}
}
