package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm writes a yes/no question to w and reads the answer from r.
// Anything other than "y" or "yes" counts as no.
func Confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleWarning.Render(prompt))
	return readYes(r)
}

// ConfirmDanger is like Confirm but styled for destructive actions.
func ConfirmDanger(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes(r)
}

func readYes(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
