package pipeline

import (
	"errors"
	"fmt"

	"github.com/ironsheep/top3colors/internal/imaging"
)

// ErrArgumentCount is returned when the CLI receives a number of positional
// arguments other than 0, 2 or 3.
var ErrArgumentCount = errors.New("incorrect number of arguments")

// ArgumentError reports unusable command-line input. No file has been
// touched when it is returned.
type ArgumentError struct {
	// Value is the offending argument, empty for a wrong argument count.
	Value string

	Err error
}

// Errors wrapped by ArgumentError for a bad concurrency level.
var (
	ErrNotANumber  = errors.New("not a number")
	ErrNotPositive = errors.New("not positive")
)

func (e *ArgumentError) Error() string {
	switch {
	case errors.Is(e.Err, ErrArgumentCount):
		return "Incorrect number of arguments, exiting!"
	case errors.Is(e.Err, ErrNotPositive):
		return fmt.Sprintf("Concurrency level should be a positive number: %s, exiting!", e.Value)
	default:
		return fmt.Sprintf("Concurrency level should be a number: %s, exiting!", e.Value)
	}
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// OutputError reports that the output file could not be recreated or
// appended to.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("Cannot write to output file name: %s, exiting!", e.Path)
}

func (e *OutputError) Unwrap() error { return e.Err }

// InputError reports that the input file could not be opened or read.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("Invalid input file name: %s, exiting!", e.Path)
}

func (e *InputError) Unwrap() error { return e.Err }

// FetchError reports a URL that could not be fetched or decoded. It names the
// URL and the input file that listed it.
type FetchError struct {
	URL   string
	Input string
	Err   error
}

func (e *FetchError) Error() string {
	if errors.Is(e.Err, imaging.ErrDecode) {
		return fmt.Sprintf("Cannot process a URL: %s in the input file: %s. Insufficient memory? Exiting!", e.URL, e.Input)
	}
	return fmt.Sprintf("Cannot process a URL: %s in the input file: %s, exiting!", e.URL, e.Input)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InterruptedError reports that the run was cancelled from outside, for
// example by SIGINT.
type InterruptedError struct {
	Input string
	Err   error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("Processing of images has been interrupted for the file name: %s, exiting!", e.Input)
}

func (e *InterruptedError) Unwrap() error { return e.Err }
