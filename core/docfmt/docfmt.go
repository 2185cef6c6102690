// Package docfmt reads and writes saved application states.
//
// Format: MAGIC(4) | VERSION(2) | FLAGS(2) | HEADER_LEN(4) | BODY_LEN(8) | HEADER | BODY
//
// Header and body are canonical CBOR. The header names the schema version
// (semver) and carries the BLAKE2b-256 digest of the body, which is checked
// on read. Item serial numbers are not stored; loaded items get fresh ones.
package docfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"github.com/aledsdavies/texstack/core/invariant"
	"github.com/aledsdavies/texstack/core/state"
)

const (
	// Magic is the file magic number "TXSK" (4 bytes)
	Magic = "TXSK"

	// Version is the container version (uint16, little-endian)
	Version uint16 = 0x0001

	// SchemaVersion is the version of the header and body layout. Files
	// with the same major version and an equal or older minor are readable.
	SchemaVersion = "v1.0.0"

	preambleLen  = 20
	maxHeaderLen = 64 * 1024
	maxBodyLen   = 32 * 1024 * 1024
	maxDepth     = 1000
)

// Header is the metadata section of a saved file.
type Header struct {
	Schema string   `cbor:"schema"`
	Digest [32]byte `cbor:"digest"`
	Items  int      `cbor:"items"`
}

// Write encodes s to w and returns the BLAKE2b-256 digest of the body.
func Write(w io.Writer, s *state.AppState) ([32]byte, error) {
	invariant.NotNil(s, "state")

	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return [32]byte{}, fmt.Errorf("create encoder: %w", err)
	}

	body, err := toWireBody(s)
	if err != nil {
		return [32]byte{}, err
	}
	bodyBytes, err := encMode.Marshal(body)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode body: %w", err)
	}
	digest := blake2b.Sum256(bodyBytes)

	header := Header{
		Schema: SchemaVersion,
		Digest: digest,
		Items:  len(body.Stack) + len(body.Document),
	}
	headerBytes, err := encMode.Marshal(header)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, Version)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0)) // flags
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(headerBytes)))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(bodyBytes)))
	buf.Write(headerBytes)
	buf.Write(bodyBytes)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return [32]byte{}, fmt.Errorf("write: %w", err)
	}
	return digest, nil
}

// Read decodes a state written by Write and returns it with its digest. The
// returned state is clean.
func Read(r io.Reader) (*state.AppState, [32]byte, error) {
	var preamble [preambleLen]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	magic := string(preamble[0:4])
	if magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("invalid magic: got %q, expected %q", magic, Magic)
	}
	version := binary.LittleEndian.Uint16(preamble[4:6])
	if version != Version {
		return nil, [32]byte{}, fmt.Errorf("unsupported version: got 0x%04x, expected 0x%04x", version, Version)
	}
	if flags := binary.LittleEndian.Uint16(preamble[6:8]); flags != 0 {
		return nil, [32]byte{}, fmt.Errorf("unsupported flags: 0x%04x", flags)
	}

	headerLen := binary.LittleEndian.Uint32(preamble[8:12])
	bodyLen := binary.LittleEndian.Uint64(preamble[12:20])
	if headerLen > maxHeaderLen {
		return nil, [32]byte{}, fmt.Errorf("header length %d exceeds maximum %d", headerLen, maxHeaderLen)
	}
	if bodyLen > maxBodyLen {
		return nil, [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", bodyLen, maxBodyLen)
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read header: %w", err)
	}
	var header Header
	if err := cbor.Unmarshal(headerBytes, &header); err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse header: %w", err)
	}
	if err := checkSchema(header.Schema); err != nil {
		return nil, [32]byte{}, err
	}

	bodyBytes := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, bodyBytes); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read body: %w", err)
	}
	digest := blake2b.Sum256(bodyBytes)
	if digest != header.Digest {
		return nil, [32]byte{}, fmt.Errorf("body digest mismatch: file is corrupt")
	}

	var body wireBody
	if err := cbor.Unmarshal(bodyBytes, &body); err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse body: %w", err)
	}
	s, err := fromWireBody(&body, maxDepth)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse body: %w", err)
	}
	return s, digest, nil
}

func checkSchema(schema string) error {
	if !semver.IsValid(schema) {
		return fmt.Errorf("invalid schema version %q", schema)
	}
	if semver.Major(schema) != semver.Major(SchemaVersion) {
		return fmt.Errorf("unsupported schema version %s (reader supports %s)", schema, semver.Major(SchemaVersion))
	}
	if semver.Compare(schema, SchemaVersion) > 0 {
		return fmt.Errorf("schema version %s is newer than supported %s", schema, SchemaVersion)
	}
	return nil
}

// Marshal encodes s into a byte slice.
func Marshal(s *state.AppState) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a byte slice produced by Marshal.
func Unmarshal(data []byte) (*state.AppState, error) {
	s, _, err := Read(bytes.NewReader(data))
	return s, err
}

// SaveFile writes s to path, replacing any existing file.
func SaveFile(path string, s *state.AppState) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a state saved with SaveFile.
func LoadFile(path string) (*state.AppState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()
	s, _, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
