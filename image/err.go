package image

import (
	"errors"

	"github.com/ezrec/mcdp/translate"
)

var f = translate.From

var (
	ErrCodeAlign  = errors.New(f("code image is not a whole number of words"))
	ErrMemorySize = errors.New(f("memory image exceeds memory size"))
)

// ErrParseWord is an unparsable word in a text image.
type ErrParseWord struct {
	LineNo int
	Word   string
}

func (err *ErrParseWord) Error() string {
	return f("line %d '%v' is not a word", err.LineNo, err.Word)
}

// ErrFile indicates the image file an error occurred in.
type ErrFile struct {
	Name string
	Err  error
}

func (err *ErrFile) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrFile) Unwrap() error {
	return err.Err
}
