package converter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommentPrefix marks a full-line comment in tune source
const CommentPrefix = ";"

// ReadTune reads tune source, drops comment lines and joins the rest
// with no separator
func ReadTune(r io.Reader) (string, error) {
	var tune strings.Builder

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read tune: %w", err)
		}

		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if !IsComment(line) {
			tune.WriteString(line)
		}

		if err == io.EOF {
			return tune.String(), nil
		}
	}
}

// ReadTuneFile reads a tune source file
func ReadTuneFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open tune file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadTune(f)
}

// IsComment reports whether a line is a full-line comment
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t\v\f"), CommentPrefix)
}

// ValidateTune checks that every segment of a tune parses
func ValidateTune(tune string) error {
	_, err := ParseTune(tune)
	return err
}
