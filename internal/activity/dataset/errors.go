package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode indicates a malformed or missing transport encoding.
	ErrDecode = errors.New("payload could not be decoded")
	// ErrFormat indicates content that is not a table of dated rows.
	ErrFormat = errors.New("payload is not a table with a calendarDate field")
	// ErrEmptyInput indicates that no files were provided.
	ErrEmptyInput = errors.New("no files provided")
	// ErrMerge indicates that at least one input of a merge failed to parse.
	ErrMerge = errors.New("dataset could not be merged")
	// ErrDeserialize indicates a corrupt or inconsistent stored dataset.
	ErrDeserialize = errors.New("stored dataset is corrupt")
	// ErrUnknownColumn indicates a query on a column the dataset lacks.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownFunction indicates an aggregate function outside Functions.
	ErrUnknownFunction = errors.New("unknown aggregate function")
)

// FileError ties a parse failure to the file that caused it.
type FileError struct {
	Index  int
	Source string
	Err    error
}

func (e *FileError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("file %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("file %d (%s): %v", e.Index, e.Source, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// MergeError lists every file that failed in a batch. It matches ErrMerge
// and unwraps to each FileError.
type MergeError struct {
	Files []*FileError
}

func (e *MergeError) Error() string {
	msgs := make([]string, 0, len(e.Files))
	for _, f := range e.Files {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%v: %s", ErrMerge, strings.Join(msgs, "; "))
}

func (e *MergeError) Is(target error) bool {
	return target == ErrMerge
}

func (e *MergeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Files))
	for _, f := range e.Files {
		errs = append(errs, f)
	}
	return errs
}
