package relfs_test

import (
	"context"
	"testing"
)

func TestExportGitObjectsOrderedAndFiltered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	writes := map[string]string{
		".git/HEAD":             "ref: refs/heads/main\n",
		".git/refs/heads/main":  "deadbeef\n",
		"README.md":             "not exported",
		".git/objects/ab/cdef":  "object-bytes",
	}
	for path, content := range writes {
		if err := s.WriteFile(ctx, path, []byte(content)); err != nil {
			t.Fatalf("WriteFile(%q) = %v", path, err)
		}
	}

	objects, err := s.ExportGitObjects(ctx)
	if err != nil {
		t.Fatalf("ExportGitObjects() = %v", err)
	}

	if len(objects) != 3 {
		t.Fatalf("len(objects) = %d, want 3", len(objects))
	}
	for i := 1; i < len(objects); i++ {
		if objects[i-1].Path >= objects[i].Path {
			t.Fatalf("objects not sorted ascending: %q >= %q", objects[i-1].Path, objects[i].Path)
		}
	}
	for _, obj := range objects {
		want := writes[obj.Path]
		if string(obj.Data) != want {
			t.Errorf("object %q = %q, want %q", obj.Path, obj.Data, want)
		}
	}
}
