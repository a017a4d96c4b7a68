package decode

import (
	"errors"
	"testing"
)

func mustRaw(t *testing.T, s string) Content {
	t.Helper()
	c, err := FromRaw([]byte(s))
	if err != nil {
		t.Fatalf("FromRaw(%s): %v", s, err)
	}
	return c
}

func TestScanTaggedPositionIrrelevant(t *testing.T) {
	first := mustRaw(t, `{"type":"CHANNEL_CREATE","id":"1","name":"general"}`)
	last := mustRaw(t, `{"id":"1","name":"general","type":"CHANNEL_CREATE"}`)

	a, err := ScanTagged(first, "type")
	if err != nil {
		t.Fatalf("tag-first scan: %v", err)
	}
	b, err := ScanTagged(last, "type")
	if err != nil {
		t.Fatalf("tag-last scan: %v", err)
	}

	av, _ := a.Tag.AsString()
	bv, _ := b.Tag.AsString()
	if av != "CHANNEL_CREATE" || bv != "CHANNEL_CREATE" {
		t.Errorf("tags = %q, %q", av, bv)
	}

	ac, err := a.Content.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	bc, err := b.Content.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(ac) != string(bc) {
		t.Errorf("remaining content differs by tag position:\n%s\n%s", ac, bc)
	}
}

func TestScanTaggedDuplicateTag(t *testing.T) {
	c := mustRaw(t, `{"type":"A","id":"1","type":"B"}`)
	_, err := ScanTagged(c, "type")
	var dup *DuplicateFieldError
	if !errors.As(err, &dup) || dup.Field != "type" {
		t.Fatalf("expected duplicate field error for type, got %v", err)
	}
}

func TestScanTaggedMissingTag(t *testing.T) {
	c := mustRaw(t, `{"id":"1"}`)
	_, err := ScanTagged(c, "type")
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "type" {
		t.Fatalf("expected missing field error for type, got %v", err)
	}
}

func TestScanTaggedSequenceForm(t *testing.T) {
	c := mustRaw(t, `["CHANNEL_CREATE","1","general"]`)
	got, err := ScanTagged(c, "type")
	if err != nil {
		t.Fatalf("sequence scan: %v", err)
	}
	tag, _ := got.Tag.AsString()
	if tag != "CHANNEL_CREATE" {
		t.Errorf("tag = %q", tag)
	}
	if n := len(got.Content.Elems()); n != 2 {
		t.Errorf("remaining elements = %d, want 2", n)
	}

	empty := mustRaw(t, `[]`)
	if _, err := ScanTagged(empty, "type"); err == nil {
		t.Error("empty sequence should fail the mandatory scan")
	}
}

func TestScanOptionallyTaggedPresent(t *testing.T) {
	c := mustRaw(t, `{"id":"1","unavailable":true,"name":"x"}`)
	got, err := ScanOptionallyTagged(c, "unavailable")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.Tag == nil {
		t.Fatal("tag should be present")
	}
	if v, ok := got.Tag.AsBool(); !ok || !v {
		t.Errorf("tag = %v, %v", v, ok)
	}
	for _, p := range got.Content.Pairs() {
		if k, _ := p.Key.AsString(); k == "unavailable" {
			t.Error("tag leaked into remaining content")
		}
	}
}

func TestScanOptionallyTaggedAbsent(t *testing.T) {
	c := mustRaw(t, `{"id":"1","name":"x"}`)
	got, err := ScanOptionallyTagged(c, "unavailable")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.Tag != nil {
		t.Error("tag should be nil when the field is absent")
	}
	if n := len(got.Content.Pairs()); n != 2 {
		t.Errorf("content entries = %d, want 2", n)
	}
}

func TestScanOptionallyTaggedDuplicate(t *testing.T) {
	c := mustRaw(t, `{"unavailable":true,"unavailable":false}`)
	_, err := ScanOptionallyTagged(c, "unavailable")
	var dup *DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}
