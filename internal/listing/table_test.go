package listing

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/menofiaacademy/academy-site/internal/logger"
)

// captureLog swaps the default logger for one writing to a buffer.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	original := logger.Default()
	buf := &bytes.Buffer{}
	logger.SetDefault(logger.New(logger.LevelDebug, buf))
	t.Cleanup(func() { logger.SetDefault(original) })
	return buf
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"Python, Basics",Intro,500`, []string{`"Python, Basics"`, "Intro", "500"}},
		{"empty fields", "a,,c,", []string{"a", "", "c", ""}},
		{"single field", "only", []string{"only"}},
		{"quote in the middle", `a "b,c" d,e`, []string{`a "b,c" d`, "e"}},
		{"unbalanced quote swallows rest", `"open,still,open`, []string{`"open,still,open`}},
		{"doubled quotes are not escapes", `"say ""hi"", ok",x`, []string{`"say ""hi"", ok"`, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitFields(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitFields(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"LF", "a\nb\nc", 3},
		{"CRLF", "a\r\nb\r\nc\r\n", 3},
		{"BOM and surrounding space", "\uFEFF  a\nb  \n\n", 2},
		{"empty", "   ", 0},
		{"header only", "a,b\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitLines(tt.text); len(got) != tt.want {
				t.Errorf("splitLines(%q) returned %d lines, want %d (%q)", tt.text, len(got), tt.want, got)
			}
		})
	}
}

func TestCleanField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`  "Python"  `, "Python"},
		{`"  spaced  "`, "spaced"},
		{"bare", "bare"},
		{`""`, ""},
		{`"only leading`, "only leading"},
	}

	for _, tt := range tests {
		if got := cleanField(tt.in); got != tt.want {
			t.Errorf("cleanField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTable_HeaderQuotesAndBOM(t *testing.T) {
	tbl := parseTable("\uFEFF\"Name\", \"job\" ,ImageURL\nSara,Teacher,x\n")
	if tbl == nil {
		t.Fatal("parseTable() = nil")
	}
	want := []string{"Name", "job", "ImageURL"}
	if !reflect.DeepEqual(tbl.header, want) {
		t.Errorf("header = %q, want %q", tbl.header, want)
	}
	if len(tbl.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(tbl.rows))
	}
}

func TestParseTable_DropsMisshapenAndBlankRows(t *testing.T) {
	tbl := parseTable("a,b,c\n1,2,3\n\n   \n1,2\n1,2,3,4\n\"x,y\",2,3\n")
	if tbl == nil {
		t.Fatal("parseTable() = nil")
	}
	if len(tbl.rows) != 2 {
		t.Fatalf("rows = %d, want 2 (%q)", len(tbl.rows), tbl.rows)
	}
	if tbl.rows[1][0] != "x,y" {
		t.Errorf("quoted field = %q, want x,y", tbl.rows[1][0])
	}
}

func TestRowValue_DefaultingTiers(t *testing.T) {
	tbl := parseTable("present,blank,marker\nvalue,,##\n")
	var r row
	tbl.each(func(got row) { r = got })

	tests := []struct {
		column string
		want   string
	}{
		{"absent", "fallback"},
		{"blank", "fallback"},
		{"marker", "fallback"},
		{"present", "value"},
	}
	for _, tt := range tests {
		if got := r.value(tt.column, "fallback"); got != tt.want {
			t.Errorf("value(%q) = %q, want %q", tt.column, got, tt.want)
		}
	}
}

func TestParseTable_DuplicateHeaderFirstWins(t *testing.T) {
	tbl := parseTable("Name,Name\nfirst,second\n")
	var r row
	tbl.each(func(got row) { r = got })
	if got := r.value("Name", ""); got != "first" {
		t.Errorf("value(Name) = %q, want first", got)
	}
}
