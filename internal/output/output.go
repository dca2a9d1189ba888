// Package output serializes symbol tables and writes them to disk.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/symtab/internal/store"
	"github.com/xonecas/symtab/internal/symtab"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

// DefaultPath is where a build lands when no output is configured.
const DefaultPath = "results/symbol_table.json"

// Format names a serialization.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatText   Format = "text"
	FormatSQLite Format = "sqlite"
)

// ErrBinaryFormat is returned when a format cannot be streamed.
var ErrBinaryFormat = errors.New("format cannot be written to a stream")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatText, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Options control serialization.
type Options struct {
	Format Format
	Theme  string // text outline only
	Color  bool   // text outline only
}

// Encode serializes doc to w. JSON is indented by two spaces and ends
// with a newline.
func Encode(w io.Writer, doc symtab.Document, opts Options) error {
	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, Outline(doc, opts.Theme, opts.Color))
		return err
	case FormatSQLite:
		return fmt.Errorf("%s: %w", opts.Format, ErrBinaryFormat)
	}
	return fmt.Errorf("unknown format %q", opts.Format)
}

// Write stores doc at path. Text formats are encoded in full before the
// file is touched and then replaced atomically, so a failed build never
// leaves a partial file. Path "-" writes to stdout.
func Write(ctx context.Context, path string, doc symtab.Document, opts Options) error {
	if opts.Format == FormatSQLite {
		return writeSQLite(ctx, path, doc)
	}
	if path == Stdout {
		return Encode(os.Stdout, doc, opts)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, opts); err != nil {
		return fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	log.Info().Str("path", path).Str("format", string(opts.Format)).Int("bytes", buf.Len()).Msg("wrote symbol table")
	return nil
}

func writeSQLite(ctx context.Context, path string, doc symtab.Document) error {
	if path == Stdout {
		return fmt.Errorf("%s: %w", FormatSQLite, ErrBinaryFormat)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	build, err := db.Save(ctx, doc)
	if err != nil {
		return fmt.Errorf("store symbol table: %w", err)
	}
	log.Info().Str("path", path).Int64("build", build).Msg("stored symbol table")
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // output is meant to be shared
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
