package action

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed line of step input: a lowercase verb and its
// arguments. Rest holds everything after the verb verbatim (trimmed) for
// free-text commands.
type Command struct {
	Name string
	Args []string
	Rest string
	Raw  string
}

// ParseCommand splits a line into a command.
func ParseCommand(line string) Command {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Raw: raw}
	}

	rest := strings.TrimSpace(strings.TrimPrefix(raw, fields[0]))
	return Command{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
		Rest: rest,
		Raw:  raw,
	}
}

// Empty reports whether the line had no content.
func (c Command) Empty() bool { return c.Name == "" }

// Arg returns argument i or "".
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Int parses argument i as an integer.
func (c Command) Int(i int) (int, error) {
	s := c.Arg(i)
	if s == "" {
		return 0, fmt.Errorf("%s: missing argument %d", c.Name, i+1)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", c.Name, s)
	}
	return n, nil
}

// Float parses argument i as a decimal amount. A leading "$" is allowed.
func (c Command) Float(i int) (float64, error) {
	s := strings.TrimPrefix(c.Arg(i), "$")
	if s == "" {
		return 0, fmt.Errorf("%s: missing argument %d", c.Name, i+1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", c.Name, s)
	}
	return f, nil
}

// RestFrom returns the arguments from index i joined by single spaces.
func (c Command) RestFrom(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}
