package furigana

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	UnterminatedBracket ErrorKind = iota + 1
	EmptyKanjiSpan
	EmptyReading
	AlignmentMismatch
	UnexpectedClose
)

var (
	ErrUnterminatedBracket = errors.New("unterminated bracket")
	ErrEmptyKanjiSpan      = errors.New("empty kanji span")
	ErrEmptyReading        = errors.New("empty reading")
	ErrAlignmentMismatch   = errors.New("reading count does not align with kanji count")
	ErrUnexpectedClose     = errors.New("unexpected closing bracket")
)

var kindErrors = map[ErrorKind]error{
	UnterminatedBracket: ErrUnterminatedBracket,
	EmptyKanjiSpan:      ErrEmptyKanjiSpan,
	EmptyReading:        ErrEmptyReading,
	AlignmentMismatch:   ErrAlignmentMismatch,
	UnexpectedClose:     ErrUnexpectedClose,
}

var kindNames = map[ErrorKind]string{
	UnterminatedBracket: "unterminated_bracket",
	EmptyKanjiSpan:      "empty_kanji_span",
	EmptyReading:        "empty_reading",
	AlignmentMismatch:   "alignment_mismatch",
	UnexpectedClose:     "unexpected_close",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseError reports where and why an encoded furigana string failed to parse.
// Offset is the byte offset of the bracket group (or stray character) that failed.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	// Kanji and Readings are only set for AlignmentMismatch.
	Kanji    string
	Readings int
}

func (e *ParseError) Error() string {
	if e.Kind == AlignmentMismatch {
		return fmt.Sprintf("furigana: %s at offset %d: %d readings for %q", kindErrors[e.Kind], e.Offset, e.Readings, e.Kanji)
	}
	return fmt.Sprintf("furigana: %s at offset %d", kindErrors[e.Kind], e.Offset)
}

func (e *ParseError) Unwrap() error {
	return kindErrors[e.Kind]
}

// KindOf returns the ErrorKind carried by err, or 0 if err is not a parse error.
func KindOf(err error) ErrorKind {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}
