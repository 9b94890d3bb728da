package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Redundant maps", statusWarn, "3", false)
	if plain != "  Redundant maps:        [WARN] 3" {
		t.Fatalf("unexpected plain line %q", plain)
	}
	colored := renderStatusLine("Redundant maps", statusWarn, "3", true)
	if !strings.HasPrefix(colored, ansiYellow) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected yellow line, got %q", colored)
	}
}

func TestRenderTablePlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"Keep", "Score"}, [][]string{{"*", "12.0"}, {"", "3.5"}}, []columnAlignment{alignLeft, alignRight})
	if strings.Contains(out, "╭") {
		t.Fatalf("expected ASCII table for non-terminal writer, got:\n%s", out)
	}
	requireContains(t, out, "12.0")
	requireContains(t, out, "KEEP")
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}
