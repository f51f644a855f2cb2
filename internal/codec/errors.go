package codec

import (
	"errors"
	"fmt"
)

// UnknownButtonError reports a button name outside the enumeration.
type UnknownButtonError struct {
	Token string // the offending name as written
	Frame int    // index into frames[]
	Index int    // index into frames[Frame].buttons[]
}

func (e *UnknownButtonError) Error() string {
	return fmt.Sprintf("unknown button %q at frames[%d].buttons[%d]", e.Token, e.Frame, e.Index)
}

// MalformedDocumentError reports a document that cannot describe a Sequence.
type MalformedDocumentError struct {
	Field   string
	Message string
	Err     error
}

func (e *MalformedDocumentError) Error() string {
	msg := "malformed sequence document"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// IsUnknownButton reports whether err is (or wraps) an UnknownButtonError.
func IsUnknownButton(err error) bool {
	var ue *UnknownButtonError
	return errors.As(err, &ue)
}

// IsMalformed reports whether err is (or wraps) a MalformedDocumentError.
func IsMalformed(err error) bool {
	var me *MalformedDocumentError
	return errors.As(err, &me)
}
