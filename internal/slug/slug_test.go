package slug

import (
	"testing"
	"time"
)

// TestNormalize exercises the folder slug normalizer with typical names,
// punctuation, whitespace, and boundary conditions.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal names ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "already a slug",
			input: "hello-world",
			want:  "hello-world",
		},
		{
			name:  "single word",
			input: "Vault",
			want:  "vault",
		},
		{
			name:  "name with year",
			input: "Summer Trip 2025",
			want:  "summer-trip-2025",
		},

		// --- Punctuation collapses to one hyphen ---
		{
			name:  "trailing exclamation marks",
			input: "Morning Run!!",
			want:  "morning-run",
		},
		{
			name:  "apostrophe becomes hyphen",
			input: "Sarah's Photos",
			want:  "sarah-s-photos",
		},
		{
			name:  "ampersand between words",
			input: "Hills & Trails",
			want:  "hills-trails",
		},
		{
			name:  "slash between words",
			input: "Before/After",
			want:  "before-after",
		},
		{
			name:  "mixed punctuation run",
			input: "Race day... (official)",
			want:  "race-day-official",
		},

		// --- Whitespace ---
		{
			name:  "leading and trailing spaces",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "multiple spaces collapsed",
			input: "hello    world",
			want:  "hello-world",
		},
		{
			name:  "tab collapses like a space",
			input: "hello\tworld",
			want:  "hello-world",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!!!???",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "   ",
			want:  "",
		},
		{
			name:  "single character",
			input: "A",
			want:  "a",
		},
		{
			name:  "date-like name",
			input: "2025-02-15",
			want:  "2025-02-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalize_Idempotent verifies that normalizing an already valid
// slug produces the same slug.
func TestNormalize_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"morning-run",
		"a",
		"run_2025-02-15",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			if got := Normalize(s); got != s {
				t.Errorf("Normalize(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestForDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), "run_2025-02-15"},
		{time.Date(2025, 12, 1, 23, 59, 0, 0, time.UTC), "run_2025-12-01"},
		{time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), "run_2024-01-05"},
	}

	for _, tt := range tests {
		if got := ForDate(tt.date); got != tt.want {
			t.Errorf("ForDate(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestRunFolderName(t *testing.T) {
	date := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	if got := RunFolderName(date, ""); got != "Feb 15" {
		t.Errorf("untitled run: got %q, want %q", got, "Feb 15")
	}
	if got := RunFolderName(date, "Trail Day"); got != "Feb 15 - Trail Day" {
		t.Errorf("titled run: got %q, want %q", got, "Feb 15 - Trail Day")
	}
}
