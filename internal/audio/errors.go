package audio

import (
	"errors"
	"fmt"

	commonerrors "github.com/gruntwork-io/go-commons/errors"
)

// DecodeErrorKind classifies why a file could not be decoded.
type DecodeErrorKind string

const (
	// KindMissing means the path does not exist or cannot be read.
	KindMissing DecodeErrorKind = "missing"
	// KindUnsupported means no decoder accepted the file.
	KindUnsupported DecodeErrorKind = "unsupported"
	// KindTranscoder means the external transcoder failed.
	KindTranscoder DecodeErrorKind = "transcoder"
	// KindEmpty means decoding produced no samples.
	KindEmpty DecodeErrorKind = "empty"
)

// DecodeError is returned by Decoder.Load. Nothing is committed when it
// occurs.
type DecodeError struct {
	Path string
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(path string, kind DecodeErrorKind, err error) error {
	return commonerrors.WithStackTrace(&DecodeError{Path: path, Kind: kind, Err: err})
}

// AsDecodeError finds a *DecodeError behind err, including one wrapped with a
// stack trace.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	if errors.As(commonerrors.Unwrap(err), &de) {
		return de, true
	}
	return nil, false
}

// ErrBusy is returned when an analysis is started while another one runs.
var ErrBusy = errors.New("analysis already in progress")
