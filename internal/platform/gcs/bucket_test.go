package gcs

import "testing"

func TestContentTypeForKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{key: "courses/apsc-099/documents/d1/syllabus.pdf", want: "application/pdf"},
		{key: "courses/apsc-099/documents/d1/notes.TXT", want: "text/plain; charset=utf-8"},
		{key: "courses/apsc-099/documents/d1/outline.md", want: "text/markdown; charset=utf-8"},
		{key: "courses/apsc-099/documents/d1/export.json", want: "application/json"},
		{key: "courses/apsc-099/documents/d1/grades.csv", want: "text/csv"},
		{key: "courses/apsc-099/documents/d1/blob.bin", want: ""},
		{key: "   ", want: ""},
	}
	for _, tc := range cases {
		if got := contentTypeForKey(tc.key); got != tc.want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", tc.key, tc.want, got)
		}
	}
}
