package format

import "testing"

func TestSanitizeInput(t *testing.T) {
	cases := map[string]string{
		"  Breaking Bad  ":     "Breaking Bad",
		"1, 3":                 "1, 3",
		"Amélie!":              "Amlie",
		"rm -rf /; echo $HOME": "rm rf  echo HOME",
		"ñ":                    "",
		"":                     "",
	}
	for in, want := range cases {
		if got := SanitizeInput(in); got != want {
			t.Errorf("SanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeInputIdempotent(t *testing.T) {
	for _, in := range []string{" a-b ", "x,,y", "\t\n1 2 "} {
		once := SanitizeInput(in)
		if twice := SanitizeInput(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		in      string
		version int
		want    string
	}{
		{"snake_case *bold*", MarkdownV1, `snake\_case \*bold\*`},
		{"[link]`x`", MarkdownV1, "\\[link]\\`x\\`"},
		{"a.b-c!", MarkdownV2, `a\.b\-c\!`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("EscapeMarkdown(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("EscapeMarkdown(%q, %d) = %q, want %q", tc.in, tc.version, got, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unknown version")
	}
}
