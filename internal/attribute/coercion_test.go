package attribute

import (
	"errors"
	"testing"
)

func TestResolveStrategies(t *testing.T) {
	cases := []struct {
		name string
		from Type
		to   Type
		want Strategy
	}{
		{name: "scalar to scalar", from: Scalar(), to: Scalar(), want: Identity},
		{name: "scalar to vector", from: Scalar(), to: Vector(3), want: Broadcast},
		{name: "vector to scalar", from: Vector(4), to: Scalar(), want: Reduce},
		{name: "vector to same length", from: Vector(3), to: Vector(3), want: Identity},
		{name: "vector to shorter", from: Vector(5), to: Vector(2), want: Resize},
		{name: "vector to longer", from: Vector(2), to: Vector(5), want: Resize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.from, tc.to)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected strategy: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestResolveIncompatibleKind(t *testing.T) {
	bad := Type{Kind: Kind(7)}
	if _, err := Resolve(bad, Scalar()); !errors.Is(err, ErrIncompatibleTypes) {
		t.Fatalf("expected ErrIncompatibleTypes, got %v", err)
	}
}

func TestApplyBroadcast(t *testing.T) {
	out := Apply(Broadcast, ScalarValue(5), Vector(3))
	if out.Kind != KindVector || len(out.Vector) != 3 {
		t.Fatalf("unexpected value: %+v", out)
	}
	for i, x := range out.Vector {
		if x != 5 {
			t.Fatalf("element %d: got %v want 5", i, x)
		}
	}
}

func TestApplyReduceIsMean(t *testing.T) {
	out := Apply(Reduce, VectorValue([]float64{1, 2, 3, 6}), Scalar())
	if out.Kind != KindScalar || out.Scalar != 3 {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestApplyReduceEmptyVector(t *testing.T) {
	out := Apply(Reduce, VectorValue(nil), Scalar())
	if out.Scalar != 0 {
		t.Fatalf("expected 0 for empty vector, got %v", out.Scalar)
	}
}

func TestApplyResizeTruncates(t *testing.T) {
	out := Apply(Resize, VectorValue([]float64{1, 2, 3, 4}), Vector(2))
	if len(out.Vector) != 2 || out.Vector[0] != 1 || out.Vector[1] != 2 {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestApplyResizeZeroPads(t *testing.T) {
	out := Apply(Resize, VectorValue([]float64{1, 2}), Vector(4))
	want := []float64{1, 2, 0, 0}
	if len(out.Vector) != len(want) {
		t.Fatalf("unexpected length: %d", len(out.Vector))
	}
	for i := range want {
		if out.Vector[i] != want[i] {
			t.Fatalf("element %d: got %v want %v", i, out.Vector[i], want[i])
		}
	}
}

func TestApplyIdentityDoesNotAlias(t *testing.T) {
	src := []float64{1, 2, 3}
	out := Apply(Identity, VectorValue(src), Vector(3))
	src[0] = 99
	if out.Vector[0] != 1 {
		t.Fatalf("coerced value aliases producer storage: %+v", out)
	}
}
