package config

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.yaml")

	want := sample{Name: "barkeep", Count: 3}
	if err := SaveYAML(path, want); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	var got sample
	if err := LoadYAML(path, &got); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSaveYAMLLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.yaml")

	if err := SaveYAML(path, sample{Name: "a"}); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}
	if err := SaveYAML(path, sample{Name: "b"}); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "sample.yaml" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only sample.yaml", names)
	}

	var got sample
	if err := LoadYAML(path, &got); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if got.Name != "b" {
		t.Errorf("Name = %q, want b", got.Name)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	var got sample
	if err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &got); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadYAMLOrDefault(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file returns default", func(t *testing.T) {
		got, err := LoadYAMLOrDefault(filepath.Join(dir, "missing.yaml"), func() *sample {
			return &sample{Name: "default"}
		})
		if err != nil {
			t.Fatalf("LoadYAMLOrDefault: %v", err)
		}
		if got.Name != "default" {
			t.Errorf("Name = %q, want default", got.Name)
		}
	})

	t.Run("existing file wins", func(t *testing.T) {
		path := filepath.Join(dir, "sample.yaml")
		if err := SaveYAML(path, sample{Name: "stored"}); err != nil {
			t.Fatal(err)
		}

		got, err := LoadYAMLOrDefault(path, func() *sample {
			return &sample{Name: "default"}
		})
		if err != nil {
			t.Fatalf("LoadYAMLOrDefault: %v", err)
		}
		if got.Name != "stored" {
			t.Errorf("Name = %q, want stored", got.Name)
		}
	})

	t.Run("corrupt file errors", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.yaml")
		if err := os.WriteFile(path, []byte("{broken: ["), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadYAMLOrDefault(path, func() *sample { return &sample{} }); err == nil {
			t.Error("expected an error for a corrupt file")
		}
	})
}
