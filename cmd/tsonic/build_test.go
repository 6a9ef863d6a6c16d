package main

import "testing"

func TestParseBuildFlags(t *testing.T) {
	flags, err := parseBuildFlags([]string{"--config", "tsonic.json", "--mode", "js", "--publish", "--timing"})
	if err != nil {
		t.Fatal(err)
	}
	if flags.config != "tsonic.json" || flags.mode != "js" || !flags.publish || !flags.timing {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if flags.project != "tsconfig.json" {
		t.Fatalf("default project should be tsconfig.json, got %q", flags.project)
	}
}

func TestParseBuildFlagsRejectsUnknown(t *testing.T) {
	if _, err := parseBuildFlags([]string{"--frobnicate"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestParseBuildFlagsMissingValue(t *testing.T) {
	if _, err := parseBuildFlags([]string{"--config"}); err == nil {
		t.Fatal("expected error for missing value")
	}
}
