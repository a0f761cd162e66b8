package driver

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
)

// UnitExt is the file extension of encoded units.
const UnitExt = ".mp"

// Unit is one compilation unit as handed over by the parser front end:
// an unresolved module tree plus the symbols it imports.
type Unit struct {
	Name    string           `msgpack:"name"`
	Source  string           `msgpack:"src,omitempty"` // исходный файл, только для отображения
	Tree    *ast.Module      `msgpack:"tree"`
	Imports *symbols.Imports `msgpack:"imports,omitempty"`

	// raw holds the encoded form the unit was read from; cache keys hash it.
	raw []byte
}

func EncodeUnit(w io.Writer, u *Unit) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(u)
}

func DecodeUnit(r io.Reader) (*Unit, error) {
	var u Unit
	if err := msgpack.NewDecoder(r).Decode(&u); err != nil {
		return nil, err
	}
	if u.Tree == nil {
		return nil, errors.New("unit has no module tree")
	}
	if u.Imports == nil {
		u.Imports = symbols.NewImports()
	}
	return &u, nil
}

// ReadUnit loads an encoded unit. A unit without a name is named after
// its file.
func ReadUnit(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Newf(diag.DrvReadUnit, "%s: %v", path, err)
	}
	u, err := DecodeUnit(bytes.NewReader(data))
	if err != nil {
		return nil, diag.Newf(diag.DrvDecodeUnit, "%s: %v", path, err)
	}
	if u.Name == "" {
		u.Name = strings.TrimSuffix(filepath.Base(path), UnitExt)
	}
	u.raw = data
	return u, nil
}

// WriteUnit encodes u to path, replacing the file atomically.
func WriteUnit(path string, u *Unit) error {
	var buf bytes.Buffer
	if err := EncodeUnit(&buf, u); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "unit-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// bytes returns the encoded unit, encoding it when it was built in memory.
func (u *Unit) bytes() ([]byte, error) {
	if u.raw != nil {
		return u.raw, nil
	}
	var buf bytes.Buffer
	if err := EncodeUnit(&buf, u); err != nil {
		return nil, err
	}
	u.raw = buf.Bytes()
	return u.raw, nil
}
