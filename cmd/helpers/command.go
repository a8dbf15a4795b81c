package helpers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/zinc-sig/pst/cmd/config"
	"github.com/zinc-sig/pst/internal/clipboard"
	"github.com/zinc-sig/pst/internal/redirect"
)

var (
	ErrNoInput         = errors.New("no input provided. Use --file, --clipboard, --redirect or pipe data")
	ErrEmptyStdin      = errors.New("no input received from stdin")
	ErrUpstreamFailure = errors.New("upstream command failed, not uploading error message")
)

// upstreamErrorPrefixes mark piped input that is most likely the error
// output of a failed command
var upstreamErrorPrefixes = []string{
	"Error:", "error:",
	"Unknown option:", "unknown option:",
	"command not found", "Command not found",
	"Usage:", "usage:",
}

// Payload is the raw input of one upload
type Payload struct {
	Data         []byte
	Filename     string
	ExplicitName bool
	Redirect     bool
	Source       string
}

// InputSources are the non-file places input can come from
type InputSources struct {
	Stdin           io.Reader
	StdinIsTerminal bool
	Clipboard       clipboard.Backend
}

// ValidateInputFlags checks that at most one input source was selected and
// returns the file to read, if any
func ValidateInputFlags(flags config.InputFlags, args []string) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("expected at most one file argument, got %d", len(args))
	}
	file := flags.File
	if len(args) == 1 {
		if file != "" {
			return "", fmt.Errorf("use either --file or a positional FILE, not both")
		}
		file = args[0]
	}

	sources := 0
	for _, set := range []bool{file != "", flags.Clipboard, flags.Redirect != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", fmt.Errorf("only one of FILE, --clipboard and --redirect can be used")
	}
	return file, nil
}

// ReadInput loads the payload from the selected source. Without an
// explicit source, piped stdin is read.
func ReadInput(flags config.InputFlags, file string, src InputSources) (*Payload, error) {
	p, err := readSource(flags, file, src)
	if err != nil {
		return nil, err
	}
	if flags.Filename != "" {
		p.Filename = flags.Filename
		p.ExplicitName = true
	}
	return p, nil
}

func readSource(flags config.InputFlags, file string, src InputSources) (*Payload, error) {
	switch {
	case flags.Redirect != "":
		page, err := redirect.Page(flags.Redirect)
		if err != nil {
			return nil, err
		}
		return &Payload{Data: page, Filename: redirect.Filename, Redirect: true, Source: "redirect"}, nil

	case flags.Clipboard:
		if src.Clipboard == nil {
			return nil, fmt.Errorf("clipboard is not available")
		}
		data, name, err := clipboard.Read(src.Clipboard)
		if err != nil {
			return nil, err
		}
		return &Payload{Data: data, Filename: name, Source: "clipboard"}, nil

	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("file not found: %s", file)
			}
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return &Payload{Data: data, Filename: filepath.Base(file), Source: "file"}, nil
	}

	if src.Stdin == nil || src.StdinIsTerminal {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(src.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if LooksLikeUpstreamError(data) {
		return nil, ErrUpstreamFailure
	}
	if len(data) == 0 {
		return nil, ErrEmptyStdin
	}
	return &Payload{Data: data, Source: "stdin"}, nil
}

// LooksLikeUpstreamError reports whether piped text starts like an error
// or usage message
func LooksLikeUpstreamError(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	trimmed := strings.TrimSpace(string(data))
	for _, prefix := range upstreamErrorPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether r is an interactive terminal
func IsTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
