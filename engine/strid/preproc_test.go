package strid

import (
	"bytes"
	"testing"
)

func TestPreprocessReplacesExpressions(t *testing.T) {
	db := NewDB()

	var out bytes.Buffer
	src := []byte(`mesh := library.ReadMesh(ID("player"), verts, indices)`)
	if err := Preprocess(db, &out, src); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	want := `mesh := library.ReadMesh(1, verts, indices)`
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}

	// Repeated names resolve to the same id; new names to the next one.
	out.Reset()
	src = []byte(`ID("sword") ID("player") ID("sword")`)
	if err := Preprocess(db, &out, src); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got := out.String(); got != "2 1 2" {
		t.Errorf("got %q, want \"2 1 2\"", got)
	}
}

func TestPreprocessPassthrough(t *testing.T) {
	db := NewDB()

	var out bytes.Buffer
	src := []byte("nothing to see here\nID without parens, I.D.(\"x\")\n")
	if err := Preprocess(db, &out, src); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if !bytes.Equal(out.Bytes(), src) {
		t.Errorf("passthrough changed the text: %q", out.String())
	}
	if db.Count() != 0 {
		t.Errorf("passthrough interned %d names", db.Count())
	}
}

func TestPreprocessErrors(t *testing.T) {
	db := NewDB()
	var out bytes.Buffer

	if err := Preprocess(db, &out, []byte(`ID("unterminated`)); err == nil {
		t.Error("expected EOF inside the expression to fail")
	}
	if err := Preprocess(db, &out, []byte("ID(\"line\nbreak\")")); err == nil {
		t.Error("expected newline inside the expression to fail")
	}
	if err := Preprocess(db, &out, []byte(`ID("name"]`)); err == nil {
		t.Error("expected a missing closing paren to fail")
	}
}
