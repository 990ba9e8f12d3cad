package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-5 * time.Second, "0s"},
		{500 * time.Millisecond, "500ms"},
		{5 * time.Second, "5s"},
		{95 * time.Second, "1m35s"},
		{time.Hour, "1h0m0s"},
		{time.Minute + 400*time.Millisecond, "1m0s"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, formatDuration(tc.in), "formatDuration(%v)", tc.in)
	}
}

func TestPrintTable_AlignsColumns(t *testing.T) {
	t.Parallel()

	var sb strings.Builder

	printTable(&sb, []string{"A", "LONG"}, [][]string{
		{"xx", "y"},
		{"z", "wwwww"},
	})

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	assert.Len(t, lines, 3)

	// Columns are padded to the widest cell; the last column carries
	// trailing padding too.
	assert.Equal(t, "A   LONG", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "xx  y", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "z   wwwww", strings.TrimRight(lines[2], " "))
}
