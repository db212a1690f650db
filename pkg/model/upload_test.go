package model

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, []string{}},
		{"deduplicates preserving order", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
		{"trims whitespace", []string{" beach ", "beach"}, []string{"beach"}},
		{"drops empties", []string{"", "  ", "sea"}, []string{"sea"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProcessingStateString(t *testing.T) {
	tests := []struct {
		state ProcessingState
		want  string
	}{
		{ProcessingNone, "none"},
		{ProcessingPending, "pending"},
		{ProcessingCompleted, "completed"},
		{ProcessingFailed, "failed"},
		{ProcessingState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestPlaceholderStats(t *testing.T) {
	stats := PlaceholderStats()
	if stats.UploadsUsed != "-" || stats.Remaining != "-" || stats.TotalUploads != "-" {
		t.Fatalf("unexpected placeholders: %+v", stats)
	}
}
