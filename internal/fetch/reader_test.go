package fetch

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "body with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Title,Artist")...),
			expected: "Title,Artist",
		},
		{
			name:     "body without BOM",
			input:    []byte("Title,Artist"),
			expected: "Title,Artist",
		},
		{
			name:     "empty body",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept",
			input:    []byte{0xEF, 0xBB, 'a'},
			expected: string([]byte{0xEF, 0xBB, 'a'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newBOMReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSanitizingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "ascii unchanged",
			input:    []byte("Song A,Artist1"),
			expected: "Song A,Artist1",
		},
		{
			name:     "multibyte unchanged",
			input:    []byte("Beyoncé,日本"),
			expected: "Beyoncé,日本",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he�lo",
		},
		{
			name:     "truncated sequence at end",
			input:    []byte{'a', 0xC3},
			expected: "a�",
		},
		{
			name:     "empty",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newSanitizingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSanitizingReader_SplitRunes(t *testing.T) {
	input := strings.Repeat("日本語,", 50)

	// OneByteReader splits every multi-byte rune across reads.
	result, err := io.ReadAll(newSanitizingReader(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("split runes were altered: got %q", string(result))
	}
}

func TestLimitedReader(t *testing.T) {
	_, err := io.ReadAll(newLimitedReader(strings.NewReader("12345"), 5))
	if err != nil {
		t.Errorf("body at the limit: unexpected error %v", err)
	}

	_, err = io.ReadAll(newLimitedReader(strings.NewReader("123456"), 5))
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("body over the limit: got %v, want ErrResponseTooLarge", err)
	}
}

func TestWrapBody(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'h', 'e', 0x80, 'l', 'o'}...)

	result, err := io.ReadAll(wrapBody(bytes.NewReader(input), 1024))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "he�lo" {
		t.Errorf("got %q, want %q", string(result), "he�lo")
	}
}
