package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "mycoach.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestRequests(t *testing.T) {
	lines := []string{
		"9:01AM INF transport configured base_url=http://coach/ generation=1",
		"9:01AM DBG http request request_id=a method=GET url=http://coach/api/clients",
		"9:01AM INF http response request_id=a method=GET status=200 duration_ms=4",
		"9:02AM WRN http request failed request_id=b method=GET error=\"dial tcp: refused\"",
		"9:02AM WRN load failed holder=clients seq=2",
	}

	got := Requests(lines)
	want := lines[1:4]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Requests() = %v, want %v", got, want)
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]string{
		"9:01AM INF http response status=200":  "INF",
		"9:01AM WRN http response status=500":  "WRN",
		"9:01AM ERR boom":                       "ERR",
		"9:01AM DBG http request":               "DBG",
		"plain text without a level":            "",
		"9:01AM INF message mentions ERR later": "INF",
	}
	for line, want := range tests {
		if got := Level(line); got != want {
			t.Errorf("Level(%q) = %q, want %q", line, got, want)
		}
	}
}
