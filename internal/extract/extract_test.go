package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromFile_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agreement.txt")
	content := "This Agreement is entered into by the parties below."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if got != content {
		t.Errorf("FromFile() = %q, want %q", got, content)
	}
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFromFile_BadPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := FromFile(path)
	if err == nil {
		t.Fatal("expected an error for a malformed PDF")
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("error does not name the file: %v", err)
	}
}

func TestFromPDF_Empty(t *testing.T) {
	got, err := FromPDF(strings.NewReader(""))
	if err != nil {
		t.Fatalf("FromPDF() error: %v", err)
	}
	if got != "" {
		t.Errorf("FromPDF() = %q, want empty", got)
	}
}
