package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "other extends both ends",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 5, End: 25},
			expected: Span{File: 1, Start: 5, End: 25},
		},
		{
			name:     "other inside",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 18},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "different file is ignored",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 40},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{File: 3, Start: 0, End: 100}
	if !outer.Contains(Span{File: 3, Start: 10, End: 20}) {
		t.Fatalf("expected inner span to be contained")
	}
	if outer.Contains(Span{File: 4, Start: 10, End: 20}) {
		t.Fatalf("span from another file must not be contained")
	}
	if outer.Contains(Span{File: 3, Start: 90, End: 101}) {
		t.Fatalf("span crossing the end must not be contained")
	}
}

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{Start: 4, End: 4}
	if !s.Empty() || s.Len() != 0 {
		t.Fatalf("expected empty span, got %v", s)
	}
	s.End = 9
	if s.Empty() || s.Len() != 5 {
		t.Fatalf("expected len 5, got %d", s.Len())
	}
}
