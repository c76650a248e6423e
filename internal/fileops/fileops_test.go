package fileops

import (
	"testing"

	"github.com/spf13/afero"
)

func memFiles(t *testing.T) *Files {
	t.Helper()
	return New(afero.NewMemMapFs())
}

func TestReadWrite(t *testing.T) {
	files := memFiles(t)
	if err := files.Write("a/b.py", []byte("x = 1\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := files.Read("a/b.py")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "x = 1\n" {
		t.Errorf("content: %q", got)
	}
	if _, err := files.Read("missing.py"); err == nil {
		t.Error("Read of missing file should fail")
	}
}

func TestBackupRestore(t *testing.T) {
	files := memFiles(t)
	if err := files.Write("svc.py", []byte("original\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	backup, err := files.Backup("svc.py")
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if !files.Exists(backup) {
		t.Fatalf("backup %s does not exist", backup)
	}

	if err := files.Write("svc.py", []byte("modified\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := files.Restore(backup, "svc.py"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, _ := files.Read("svc.py")
	if string(got) != "original\n" {
		t.Errorf("restored content: %q", got)
	}
}

func TestPythonFiles(t *testing.T) {
	files := memFiles(t)
	fixtures := []string{
		"proj/app.py",
		"proj/api/views.py",
		"proj/venv/lib.py",
		"proj/__pycache__/app.cpython-312.py",
		"proj/.git/hook.py",
		"proj/README.md",
	}
	for _, path := range fixtures {
		if err := files.Write(path, []byte("")); err != nil {
			t.Fatalf("writing fixture %s: %v", path, err)
		}
	}

	got, err := files.PythonFiles("proj")
	if err != nil {
		t.Fatalf("PythonFiles failed: %v", err)
	}
	want := []string{"proj/api/views.py", "proj/app.py"}
	if len(got) != len(want) {
		t.Fatalf("files: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
