package jsonutil

import "testing"

func TestMarshalNoEscape_KeepsAngleBrackets(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"k": "engagement >70% is good"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"k":"engagement >70% is good"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	b, err := MarshalNoEscapeIndent(map[string]int{"a": 1}, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "{\n  \"a\": 1\n}"
	if string(b) != want {
		t.Fatalf("got %q, want %q", b, want)
	}
}

func TestCoerceString(t *testing.T) {
	if s, err := CoerceString("already a string"); err != nil || s != "already a string" {
		t.Fatalf("passthrough failed: %q %v", s, err)
	}
	s, err := CoerceString(map[string]int{"engagementRate": 78})
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if s != `{"engagementRate":78}` {
		t.Fatalf("got %s", s)
	}
}
