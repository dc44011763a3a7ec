package logger

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// LogBufferWriter is an io.Writer that feeds complete lines into a LogBuffer.
// Lines look like "<timestamp> <LEVEL> [component] message"; the component
// becomes the entry source, anything else is attributed to "system".
type LogBufferWriter struct {
	buffer *LogBuffer
	buf    bytes.Buffer
	mu     sync.Mutex
}

var componentRegex = regexp.MustCompile(`^(?:\S+\s+)?(?:(DEBUG|INFO|WARN|ERROR)\s+)?\[([^\]]+)\]\s*(.*)$`)

// NewLogBufferWriter creates a new writer that writes to the log buffer
func NewLogBufferWriter(buffer *LogBuffer) *LogBufferWriter {
	return &LogBufferWriter{
		buffer: buffer,
	}
}

// Write implements io.Writer
func (lw *LogBufferWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf.Write(p)

	for {
		line, err := lw.buf.ReadString('\n')
		if err == io.EOF {
			// keep the partial line for the next write
			lw.buf.WriteString(line)
			break
		}
		if err != nil {
			return len(p), err
		}

		line = strings.TrimSuffix(line, "\n")
		if len(line) == 0 {
			continue
		}

		source := "system"
		message := line

		if matches := componentRegex.FindStringSubmatch(line); len(matches) == 4 {
			source = matches[2]
			message = matches[3]
			if matches[1] != "" && matches[1] != LevelInfo.String() {
				message = matches[1] + " " + message
			}
		}

		lw.buffer.Add(source, message)
	}

	return len(p), nil
}
