// Package security checks files before they are loaded into a buffer.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-enry/go-enry/v2"

	tserrors "github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
)

// DefaultMaxKB is the size limit used when none is configured.
const DefaultMaxKB = 4096

var (
	ErrDirectory = errors.New("is a directory")
	ErrTooLarge  = errors.New("file too large")
	ErrBinary    = errors.New("file appears to be binary")
)

// FileValidator refuses files that cannot be source text: directories,
// oversized files and binary data.
type FileValidator struct {
	MaxSize    int64 // Files larger than this are refused
	HeaderSize int64 // Bytes sniffed for binary content
}

// NewFileValidator returns a validator with a maxKB size limit. Values
// below 1 select DefaultMaxKB.
func NewFileValidator(maxKB int64) *FileValidator {
	if maxKB < 1 {
		maxKB = DefaultMaxKB
	}
	return &FileValidator{
		MaxSize:    maxKB * 1024,
		HeaderSize: 8 * 1024,
	}
}

// Validate stats path and sniffs its header.
func (fv *FileValidator) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return tserrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return tserrors.NewFileError("validate", path, ErrDirectory)
	}
	if info.Size() > fv.MaxSize {
		return tserrors.NewFileError("validate", path,
			fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), fv.MaxSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return tserrors.NewFileError("open", path, err)
	}
	defer f.Close()

	header := make([]byte, fv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return tserrors.NewFileError("read", path, err)
	}
	if err := fv.CheckContent(header[:n]); err != nil {
		return tserrors.NewFileError("validate", path, err)
	}
	return nil
}

// CheckContent rejects data that starts with a known binary signature or
// that go-enry classifies as binary.
func (fv *FileValidator) CheckContent(data []byte) error {
	if kind := sniffMagic(data); kind != "" {
		return fmt.Errorf("%w (%s data)", ErrBinary, kind)
	}
	if enry.IsBinary(data) {
		return ErrBinary
	}
	return nil
}

// ReadFile validates path and returns its content.
func (fv *FileValidator) ReadFile(path string) ([]byte, error) {
	if err := fv.Validate(path); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, tserrors.NewFileError("read", path, err)
	}
	// The file may have been replaced since Validate looked at it.
	if int64(len(content)) > fv.MaxSize {
		return nil, tserrors.NewFileError("validate", path,
			fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(content), fv.MaxSize))
	}
	return content, nil
}

var signatures = []struct {
	kind  string
	magic []byte
}{
	{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF", []byte("GIF8")},
	{"PDF", []byte("%PDF-")},
	{"ZIP", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"ELF", []byte{0x7F, 'E', 'L', 'F'}},
	{"WebAssembly", []byte{0x00, 'a', 's', 'm'}},
	{"PE executable", []byte{'M', 'Z'}},
}

func sniffMagic(header []byte) string {
	for _, s := range signatures {
		if bytes.HasPrefix(header, s.magic) {
			// "MZ" also starts ordinary identifiers; require a NUL nearby.
			if s.kind == "PE executable" && !bytes.Contains(header[:min(len(header), 64)], []byte{0}) {
				continue
			}
			return s.kind
		}
	}
	return ""
}
