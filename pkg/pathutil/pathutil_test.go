package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":            ".",
		"/":           "/",
		"//a//b":      "/a/b",
		"/a/./b":      "/a/b",
		"/a/../b":     "/b",
		"/../a":       "/a",
		"a/../../b":   "../b",
		"./a":         "a",
		"a/b/":        "a/b/",
		"/a/b/../../": "/",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, p := range []string{"/a/b/c", "a/../b", "", "/", "a/b/"} {
		once := Normalize(p)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", p, once, twice)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join(); got != "." {
		t.Errorf("Join() = %q, want .", got)
	}
	if got := Join("a", "", "b", "c"); got != "a/b/c" {
		t.Errorf("Join = %q", got)
	}
	if got := Join("/a/", "/b"); got != "/a/b" {
		t.Errorf("Join = %q", got)
	}
}

func TestResolveIsAbsolute(t *testing.T) {
	for _, elems := range [][]string{{"a", "b"}, {"/x", "y"}, {"/a", "/b", "c"}} {
		got := Resolve(elems...)
		if !IsAbsolute(got) {
			t.Errorf("Resolve(%v) = %q not absolute", elems, got)
		}
	}
}

func TestDirname(t *testing.T) {
	cases := map[string]string{
		"/":      "/",
		"/a":     "/",
		"/a/b":   "/a",
		"a":      ".",
		"":       ".",
		"a/b/c":  "a/b",
	}
	for in, want := range cases {
		if got := Dirname(in); got != want {
			t.Errorf("Dirname(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBasename(t *testing.T) {
	if got := Basename("/", ""); got != "" {
		t.Errorf("Basename(/) = %q, want empty", got)
	}
	if got := Basename("/a/b.txt", ".txt"); got != "b" {
		t.Errorf("Basename = %q", got)
	}
	if got := Basename("/a/b.txt", ".md"); got != "b.txt" {
		t.Errorf("Basename with mismatched ext = %q", got)
	}
}

func TestExtname(t *testing.T) {
	cases := map[string]string{
		"/a/.bashrc":  "",
		"/a/b.txt":    ".txt",
		"/a/b.tar.gz": ".gz",
		"/a/b.":       ".",
		"/a/b":        "",
	}
	for in, want := range cases {
		if got := Extname(in); got != want {
			t.Errorf("Extname(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormatInverse(t *testing.T) {
	for _, p := range []string{"/a/b/c.txt", "/a", "/", "a.txt"} {
		n := Normalize(p)
		if got := Format(Parse(n)); got != n {
			t.Errorf("Format(Parse(%q)) = %q, want %q", n, got, n)
		}
	}
}

func TestRelative(t *testing.T) {
	cases := []struct{ from, to, want string }{
		{"/a/b", "/a/b", ""},
		{"/a/b", "/a/c", "../c"},
		{"/a", "/a/b/c", "b/c"},
		{"/a/b/c", "/a", "../.."},
	}
	for _, c := range cases {
		if got := Relative(c.from, c.to); got != c.want {
			t.Errorf("Relative(%q,%q) = %q, want %q", c.from, c.to, got, c.want)
		}
	}
}
