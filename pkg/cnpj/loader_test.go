package cnpj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeTempInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cnpj.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp input: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	logger := zerolog.Nop()

	path := writeTempInput(t, "11.222.333/0001-81\n\n191\n11222333000181\n")
	ids := LoadFile(path, logger)

	want := []string{"11222333000181", "00000000000191", "11222333000181"}
	if len(ids) != len(want) {
		t.Fatalf("LoadFile returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestLoadFile_PreservesDuplicatesAndOrder(t *testing.T) {
	logger := zerolog.Nop()

	path := writeTempInput(t, "191\n191\n272\n191\n")
	ids := LoadFile(path, logger)

	want := []string{"00000000000191", "00000000000191", "00000000000272", "00000000000191"}
	if len(ids) != len(want) {
		t.Fatalf("LoadFile returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestLoadFile_SkipsDigitlessLines(t *testing.T) {
	logger := zerolog.Nop()

	path := writeTempInput(t, "cnpj\n191\nn/a\n")
	ids := LoadFile(path, logger)

	if len(ids) != 1 {
		t.Fatalf("LoadFile returned %d ids, want 1", len(ids))
	}
	if ids[0] != "00000000000191" {
		t.Errorf("ids[0] = %q, want %q", ids[0], "00000000000191")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	logger := zerolog.Nop()

	ids := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.csv"), logger)
	if len(ids) != 0 {
		t.Errorf("LoadFile on missing file returned %d ids, want 0", len(ids))
	}
}
