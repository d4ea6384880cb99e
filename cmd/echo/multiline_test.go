package main

import (
	"testing"

	"echo/parser"
)

func tryParse(s string) bool {
	_, err := parser.ParseProgram(s)
	return err == nil
}

func TestMultiLineCollectorCompletesSimpleStatement(t *testing.T) {
	var c multiLineCollector
	src, complete := c.processLine("let x = 42;", tryParse)
	if !complete {
		t.Fatal("expected a complete statement")
	}
	if src != "let x = 42;" {
		t.Fatalf("unexpected source: %q", src)
	}
	if c.collecting() {
		t.Fatal("collector should reset after completion")
	}
}

func TestMultiLineCollectorWaitsForClosingBrace(t *testing.T) {
	var c multiLineCollector
	if _, complete := c.processLine("let xs = {", tryParse); complete {
		t.Fatal("expected need more after opening brace")
	}
	if _, complete := c.processLine("1, 2,", tryParse); complete {
		t.Fatal("expected need more mid-list")
	}
	src, complete := c.processLine("3};", tryParse)
	if !complete {
		t.Fatal("expected completion once the list and statement close")
	}
	if src != "let xs = {\n1, 2,\n3};" {
		t.Fatalf("unexpected accumulated source: %q", src)
	}
}

func TestMultiLineCollectorIgnoresBracesInsideStrings(t *testing.T) {
	var c multiLineCollector
	src, complete := c.processLine(`let s = "{ not a brace }";`, tryParse)
	if !complete {
		t.Fatal("expected completion, string braces should not affect nesting")
	}
	if src == "" {
		t.Fatal("expected non-empty source")
	}
}

func TestMultiLineCollectorPromptReflectsState(t *testing.T) {
	var c multiLineCollector
	if c.prompt() != "echo> " {
		t.Fatalf("expected primary prompt, got %q", c.prompt())
	}
	c.processLine("let xs = {", tryParse)
	if c.prompt() != "   > " {
		t.Fatalf("expected continuation prompt, got %q", c.prompt())
	}
}
