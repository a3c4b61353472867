package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/validation"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printAck reports a write the way the server acknowledged it.
func printAck(w io.Writer, ack api.Ack) error {
	if ack.HasID() {
		_, err := fmt.Fprintf(w, "%s (id %d)\n", ack.Message, ack.IDValue())
		return err
	}
	_, err := fmt.Fprintln(w, ack.Message)
	return err
}

// fail turns err into the message shown on the terminal.
func fail(operation string, err error) error {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("failed to %s: %s", operation, ve.UserMessage())
	}
	return fmt.Errorf("failed to %s: %s", operation, api.Message(err))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 1, 64)
}
