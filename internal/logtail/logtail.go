package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// <= 0 returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// httpMessages are the transport's log messages.
var httpMessages = []string{"http request", "http response", "http request failed"}

// Requests keeps the lines written by the HTTP transport.
func Requests(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		for _, msg := range httpMessages {
			if strings.Contains(line, " "+msg+" ") || strings.HasSuffix(line, " "+msg) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// Level returns the level token of a tint line ("DBG", "INF", "WRN", "ERR")
// or "" when none is found.
func Level(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if i > 2 {
			break
		}
		switch f {
		case "DBG", "INF", "WRN", "ERR":
			return f
		}
	}
	return ""
}
