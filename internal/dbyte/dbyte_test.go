package dbyte

import "testing"

func TestLiteralRoundTrip(t *testing.T) {
	d := NewLiteral('x')
	if !d.IsLiteral() {
		t.Fatal("NewLiteral is not a literal")
	}
	if !d.IsOriginalLiteral() {
		t.Fatal("NewLiteral is not an original literal")
	}
	if d.ByteValue() != 'x' {
		t.Fatalf("ByteValue = %q, want 'x'", d.ByteValue())
	}
	if got := d.ByteType(); got != Literal {
		t.Fatalf("ByteType = %v, want Literal", got)
	}
}

func TestInferredLiteral(t *testing.T) {
	d := NewInferredLiteral('y')
	if !d.IsLiteral() || !d.IsInferredLiteral() {
		t.Fatal("NewInferredLiteral did not produce an inferred literal")
	}
	if d.IsOriginalLiteral() {
		t.Fatal("inferred literal must not also be an original literal")
	}
	if got := d.ByteType(); got != InferredLit {
		t.Fatalf("ByteType = %v, want InferredLit", got)
	}
}

func TestReconstructedConfidenceBands(t *testing.T) {
	// Boundaries reproduced from s_confidence_to_type in
	// original_source/dbyte.C: a confidence of 0 is indistinguishable
	// from "unknown" even though the byte is technically a literal.
	cases := []struct {
		confidence uint
		want       ByteType
	}{
		{0, Unknown},
		{1, WildGuess},
		{19, WildGuess},
		{20, Guessed},
		{47, Guessed},
		{48, Reconstructed},
		{62, Reconstructed},
		{63, UserSupplied},
	}
	for _, c := range cases {
		d := NewReconstructed('a', c.confidence)
		if !d.IsLiteral() || d.IsOriginalLiteral() {
			t.Fatalf("confidence %d: not a reconstructed-shaped literal", c.confidence)
		}
		if got := d.ByteType(); got != c.want {
			t.Errorf("confidence %d: ByteType = %v, want %v", c.confidence, got, c.want)
		}
		if got := d.Confidence(); got != c.confidence {
			t.Errorf("confidence %d: Confidence() = %d", c.confidence, got)
		}
	}
}

func TestReferenceIsNotLiteral(t *testing.T) {
	var d DecodedByte
	d.SetOriginalLocation(12345)
	if d.IsLiteral() {
		t.Fatal("small co-index misclassified as literal")
	}
	if !d.IsReference() {
		t.Fatal("small co-index not classified as reference")
	}
	if got := d.ByteType(); got != Unknown {
		t.Fatalf("ByteType of a reference = %v, want Unknown", got)
	}
}

func TestDiscontinuityMarker(t *testing.T) {
	d := NewDiscontinuityMarker(4096)
	if !d.IsDiscontinuity() {
		t.Fatal("marker not recognized as a discontinuity")
	}
	if d.IsLiteral() || d.IsReference() {
		t.Fatal("discontinuity marker must be neither literal nor reference")
	}
	if got := d.DiscontinuitySize(); got != 4096 {
		t.Fatalf("DiscontinuitySize = %d, want 4096", got)
	}
}

func TestSetConfidencePreservesByteValue(t *testing.T) {
	d := NewReconstructed('z', 10)
	d.SetConfidence(50)
	if d.ByteValue() != 'z' {
		t.Fatalf("SetConfidence corrupted byte value: %q", d.ByteValue())
	}
	if got := d.ByteType(); got != Reconstructed {
		t.Fatalf("ByteType after SetConfidence = %v, want Reconstructed", got)
	}
}
