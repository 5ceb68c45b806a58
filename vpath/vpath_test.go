package vpath

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"/":           "",
		"a":           "a",
		"/a":          "a",
		"./a":         "a",
		"a/":          "a",
		"/a/":         "a",
		"a/b/c":       "a/b/c",
		"/a/b/c/":     "a/b/c",
		".":           "",
		"./":          "",
		"///a":        "a",
		"./a/b":       "a/b",
		"refs/heads":  "refs/heads",
		"/refs/heads": "refs/heads",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "/", "a/b", "./a/b/", "///a/b/c///", "."}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestBaseDir(t *testing.T) {
	if got := Base("a/b/c.txt"); got != "c.txt" {
		t.Errorf("Base = %q", got)
	}
	if got := Dir("a/b/c.txt"); got != "a/b" {
		t.Errorf("Dir = %q", got)
	}
	if got := Dir("a"); got != "" {
		t.Errorf("Dir(a) = %q, want empty", got)
	}
	if got := Dir(""); got != "" {
		t.Errorf("Dir('') = %q, want empty", got)
	}
	if got := Base(""); got != "" {
		t.Errorf("Base('') = %q, want empty", got)
	}
}

func TestSplitDepth(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split('') = %v, want nil", got)
	}
	if got := Split("a/b/c"); len(got) != 3 {
		t.Errorf("Split = %v", got)
	}
	if Depth("") != 0 {
		t.Errorf("Depth('') != 0")
	}
	if Depth("a/b/c") != 3 {
		t.Errorf("Depth(a/b/c) != 3")
	}
}

func TestJoin(t *testing.T) {
	if got := Join("a", "b", "c"); got != "a/b/c" {
		t.Errorf("Join = %q", got)
	}
	if got := Join("", "a"); got != "a" {
		t.Errorf("Join('', a) = %q", got)
	}
}
