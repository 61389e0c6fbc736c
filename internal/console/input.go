package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when stdin reaches EOF mid-session.
var ErrInputClosed = errors.New("input closed")

// lineReader reads prompt answers one line at a time.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as-is; EOF with nothing read is ErrInputClosed.
func (l *lineReader) readLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrInputClosed
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
