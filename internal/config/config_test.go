package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.Tasks) == 0 {
		t.Fatalf("default config should enumerate tasks")
	}
	if cfg.Multipliers.TweetNight != 0.4 || cfg.Multipliers.EngagementDay != 1.5 {
		t.Fatalf("unexpected default multipliers: %+v", cfg.Multipliers)
	}
	if cfg.Timing.TweetIntervalSeconds != 3600 {
		t.Fatalf("unexpected default tweet interval: %d", cfg.Timing.TweetIntervalSeconds)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg", "devitalik.yaml")
	want := Default()
	want.Agent.Name = "testbot"
	want.Tasks = []TaskConfig{{Name: "post-tweet", Weight: 2.5, Enabled: true}}
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Agent.Name != "testbot" {
		t.Fatalf("agent name lost in roundtrip: %q", got.Agent.Name)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Weight != 2.5 {
		t.Fatalf("tasks lost in roundtrip: %+v", got.Tasks)
	}
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Tasks = append(cfg.Tasks, TaskConfig{Name: "take-over-world", Weight: 1, Enabled: true})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown task name should be rejected")
	}
	cfg = Default()
	cfg.Tasks[0].Weight = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("negative weight should be rejected")
	}
	cfg = Default()
	cfg.Multipliers.TweetNight = -0.1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("negative multiplier should be rejected")
	}
}

func TestSaveEmptyPath(t *testing.T) {
	if err := Save("", Default()); err == nil {
		t.Fatalf("empty path should error")
	}
}
