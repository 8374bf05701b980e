package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestParseError(t *testing.T) {
	underlying := errors.New("syntax error")
	err := NewParseError("typescript", 10, 5, "}", underlying).WithBuffer(3)

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}

	if err.BufferID != 3 {
		t.Errorf("Expected BufferID to be 3, got %d", err.BufferID)
	}

	if err.Line != 10 || err.Column != 5 {
		t.Errorf("Expected Line/Column to be 10:5, got %d:%d", err.Line, err.Column)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `typescript parse error at 10:5 (near token "}"): syntax error`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseError_NoPosition(t *testing.T) {
	err := NewParseError("tsx", 0, 0, "", errors.New("parser panicked"))
	expectedMsg := "tsx parse error: parser panicked"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestSelectorError(t *testing.T) {
	underlying := errors.New("expected ]")
	err := NewSelectorError(`Identifier[name="a"`, 19, underlying)

	if err.Type != ErrorTypeSelector {
		t.Errorf("Expected Type to be ErrorTypeSelector, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	wrapped := fmt.Errorf("highlight: %w", err)
	if !IsSelector(wrapped) {
		t.Errorf("Expected wrapped error to be detected as selector error")
	}
	if IsParse(wrapped) {
		t.Errorf("Selector error must not be reported as a parse error")
	}
}

func TestPositionError(t *testing.T) {
	err := NewPositionError(7, 3)
	if err.Error() != "line 7 out of range (buffer has 3 lines)" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !IsPosition(fmt.Errorf("offset: %w", err)) {
		t.Errorf("Expected wrapped error to be detected as position error")
	}
}

func TestFileError(t *testing.T) {
	err := NewFileError("read", "/tmp/a.ts", fs.ErrNotExist)
	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected ErrorTypeFileNotFound, got %v", err.Type)
	}

	err = NewFileError("read", "/tmp/a.ts", fmt.Errorf("open: %w", fs.ErrPermission))
	if err.Type != ErrorTypePermission {
		t.Errorf("Expected ErrorTypePermission, got %v", err.Type)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected error to unwrap to fs.ErrPermission")
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")
	err := NewConfigError("highlight.debounce-ms", "-1", underlying)

	expectedMsg := "config error for field highlight.debounce-ms (value -1): must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestProtocolError(t *testing.T) {
	err := NewProtocolError("highlight", errors.New("missing selector"))
	if err.Error() != "protocol error in highlight: missing selector" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	err = NewProtocolError("", errors.New("bad frame"))
	if err.Error() != "protocol error: bad frame" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
