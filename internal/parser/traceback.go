package parser

import (
	"regexp"
	"strconv"
	"strings"

	"clinic/internal/domain"
)

var (
	// path:line: text
	locationPattern = regexp.MustCompile(`^(.+?):(\d+):\s?(.*)$`)
	// path:line: in function 'name' / in main chunk
	framePattern = regexp.MustCompile(`^(.+?):(\d+):\s*in\s+(.*)$`)
	// [G]: in function 'error'
	goFramePattern = regexp.MustCompile(`^\[G\]:\s*(?:in\s+)?(.*)$`)
	// /src/pkg/file.go:42 (0x4f2a31)
	goStackPattern = regexp.MustCompile(`^(\S+\.go):(\d+) \(0x[0-9a-f]+\)$`)
)

// Frame is one entry of a script stack traceback
type Frame struct {
	File     string
	Line     int
	Function string
}

// String renders the frame the way it appeared in the traceback
func (f Frame) String() string {
	if f.Line == 0 {
		return f.File + ": " + f.Function
	}
	return f.File + ":" + strconv.Itoa(f.Line) + ": " + f.Function
}

// TracebackParser turns recorded error messages and tracebacks into TestFailure details
type TracebackParser struct{}

// NewTracebackParser creates a new TracebackParser
func NewTracebackParser() *TracebackParser {
	return &TracebackParser{}
}

// ParseFailures returns one failure per failed test followed by one per failed module import
func (p *TracebackParser) ParseFailures(res *domain.Result) []domain.TestFailure {
	var failures []domain.TestFailure

	for _, e := range res.TestsFailed {
		f := p.parseFailure(e.Test.Error, e.Test.Traceback)
		f.Kind = domain.FailureTest
		f.TestName = e.Test.Name
		if e.Test.Module != nil {
			f.ModuleName = e.Test.Module.Name
			f.FilePath = e.Test.Module.Path
		}
		failures = append(failures, f)
	}

	for _, m := range res.ImportFailures() {
		f := p.parseFailure(m.Error, m.Traceback)
		f.Kind = domain.FailureImport
		f.ModuleName = m.Name
		f.FilePath = m.Path
		failures = append(failures, f)
	}

	return failures
}

func (p *TracebackParser) parseFailure(message, traceback string) domain.TestFailure {
	failure := domain.TestFailure{Message: strings.TrimSpace(message)}

	if file, line, _, ok := ParseLocation(message); ok {
		failure.File = file
		failure.Line = line
	}

	frames := ParseTraceback(traceback)
	for _, fr := range frames {
		failure.StackTrace = append(failure.StackTrace, fr.String())
		// The first script frame is where the error surfaced
		if failure.File == "" && fr.Line > 0 {
			failure.File = fr.File
			failure.Line = fr.Line
		}
	}

	return failure
}

// ParseLocation splits an error message of the form "file:line: text".
// ok is false when the message carries no position.
func ParseLocation(message string) (file string, line int, text string, ok bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	m := locationPattern.FindStringSubmatch(first)
	if m == nil {
		return "", 0, message, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, message, false
	}
	return m[1], line, m[3], true
}

// ParseTraceback extracts the frames of a script "stack traceback:" block or of a Go panic stack.
// Lines that are not frames are skipped.
func ParseTraceback(traceback string) []Frame {
	var frames []Frame
	inStack := false
	lines := strings.Split(traceback, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "stack traceback:") {
			inStack = true
			continue
		}

		if m := goStackPattern.FindStringSubmatch(line); m != nil {
			frame := Frame{File: m[1], Line: atoi(m[2])}
			// The function and source line follow on their own line
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
				fn, _, _ := strings.Cut(strings.TrimSpace(lines[i+1]), ": ")
				frame.Function = fn
				i++
			}
			frames = append(frames, frame)
			continue
		}
		if !inStack {
			continue
		}

		if m := goFramePattern.FindStringSubmatch(line); m != nil {
			frames = append(frames, Frame{File: "[G]", Function: m[1]})
			continue
		}
		if m := framePattern.FindStringSubmatch(line); m != nil {
			frames = append(frames, Frame{File: m[1], Line: atoi(m[2]), Function: m[3]})
		}
	}

	return frames
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
