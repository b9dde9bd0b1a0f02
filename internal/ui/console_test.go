package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Print(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(nil, &out)

	console.Print("Hello", " ", "World")

	if got := out.String(); got != "Hello World" {
		t.Errorf("Print() = %q, want %q", got, "Hello World")
	}
}

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(nil, &out)

	console.Printf("Hello %s", "World")

	if got := out.String(); got != "Hello World" {
		t.Errorf("Printf() = %q, want %q", got, "Hello World")
	}
}

func TestConsole_Scan(t *testing.T) {
	in := bytes.NewBufferString("line1\nline2")
	console := NewConsole(in, nil)

	line, ok := console.Scan()
	if !ok || line != "line1" {
		t.Errorf("first Scan() = %q, %v", line, ok)
	}
	line, ok = console.Scan()
	if !ok || line != "line2" {
		t.Errorf("second Scan() = %q, %v", line, ok)
	}
	if _, ok := console.Scan(); ok {
		t.Error("Scan() after EOF should return false")
	}
}

func TestConsole_Scan_NilReader(t *testing.T) {
	console := NewConsole(nil, nil)
	if _, ok := console.Scan(); ok {
		t.Error("Scan() with nil reader should return false")
	}
}

func TestConsole_Answer_StripsExtension(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(nil, &out)

	console.Answer("Plants convert light.", []string{"research.txt", "notes.txt"})

	got := out.String()
	if !strings.Contains(got, "Explore the following document(s): research, notes") {
		t.Errorf("source list missing or not trimmed: %q", got)
	}
	if !strings.Contains(got, "Plants convert light.") {
		t.Errorf("answer text missing: %q", got)
	}
}

func TestConsole_Answer_NoSources(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(nil, &out)

	console.Answer("Please ask a valid question.", nil)

	if strings.Contains(out.String(), "Explore") {
		t.Errorf("source list should be omitted when empty: %q", out.String())
	}
}

func TestConsole_Error(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(nil, &out)

	console.Error("database unreachable")

	if !strings.Contains(out.String(), "database unreachable") {
		t.Errorf("error message missing: %q", out.String())
	}
}
