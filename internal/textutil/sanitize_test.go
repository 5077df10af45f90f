package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"cat.jpg", "cat.jpg"},
		{"  my holiday photo.png ", "my_holiday_photo.png"},
		{"a/b\\c:d*e.jpg", "a-b-c-d-e.jpg"},
		{"what?<>|\".gif", "what.gif"},
		{"50% off #1 & more.webp", "50_off_1_and_more.webp"},
		{"café.jpg", "café.jpg"},
		{"...", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Summer-2024", "summer-2024"},
		{"  Beach Day ", "beach_day"},
		{"__x__", "x"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := SanitizeTag(tt.in); got != tt.want {
			t.Fatalf("SanitizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanFolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"products", "/products"},
		{"/products//shoes/", "/products/shoes"},
		{"a\\b", "/a/b"},
		{"../x", "/x"},
	}
	for _, tt := range tests {
		if got := CleanFolder(tt.in); got != tt.want {
			t.Fatalf("CleanFolder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
