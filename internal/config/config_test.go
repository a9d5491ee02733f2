package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEMORIAKIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MEMORIAKIT_FEATURES", "")
	t.Setenv("MEMORIAKIT_SEQUENCE_ROOT", "")
	t.Setenv("MEMORIAKIT_TEMPLATES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FeaturesPath != DefaultFeaturesPath {
		t.Errorf("expected default features path, got %s", cfg.FeaturesPath)
	}
	if cfg.SequenceRoot != DefaultSequenceRoot {
		t.Errorf("expected default sequence root, got %s", cfg.SequenceRoot)
	}
	if cfg.TemplateDir != "" {
		t.Errorf("expected empty template dir, got %s", cfg.TemplateDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "features_path: /mods/AbilityFeatures.txt\nsequence_root: /mods/SpecialEffects\ntemplate_dir: /mods/templates\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MEMORIAKIT_CONFIG", path)
	t.Setenv("MEMORIAKIT_FEATURES", "")
	t.Setenv("MEMORIAKIT_SEQUENCE_ROOT", "")
	t.Setenv("MEMORIAKIT_TEMPLATES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FeaturesPath != "/mods/AbilityFeatures.txt" {
		t.Errorf("unexpected features path: %s", cfg.FeaturesPath)
	}
	if cfg.TemplateDir != "/mods/templates" {
		t.Errorf("unexpected template dir: %s", cfg.TemplateDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("features_path: /from/file.txt\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MEMORIAKIT_CONFIG", path)
	t.Setenv("MEMORIAKIT_FEATURES", "/from/env.txt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FeaturesPath != "/from/env.txt" {
		t.Errorf("expected env override, got %s", cfg.FeaturesPath)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("features_path: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MEMORIAKIT_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for broken YAML")
	}
}
