package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatFor picks the encoding for path. An explicit format wins; otherwise
// the extension under an optional .zst suffix decides, defaulting to JSON.
func formatFor(path, explicit string) (string, error) {
	switch strings.ToLower(explicit) {
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q", explicit)
	}
	switch filepath.Ext(strings.TrimSuffix(path, ".zst")) {
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatJSON, nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func decode(r io.Reader, format string, v any) error {
	if format == formatYAML {
		return yaml.NewDecoder(r).Decode(v)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeFile encodes v to path, or to stdout when path is empty or "-".
func writeFile(stdout io.Writer, path, format string, v any) (err error) {
	if path == "" || path == "-" {
		return encode(stdout, format, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !compressed(path) {
		return encode(f, format, v)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := encode(zw, format, v); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// readFile decodes path, or stdin when path is "-", into v.
func readFile(stdin io.Reader, path, format string, v any) error {
	if path == "-" {
		return decode(stdin, format, v)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !compressed(path) {
		return decode(f, format, v)
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()
	return decode(zr, format, v)
}
