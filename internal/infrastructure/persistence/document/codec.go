// Package document converts an institute to and from its persisted document
// in one of several wire formats. Stores hold bytes; this package owns what
// the bytes mean.
package document

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Codec encodes the institute snapshot to bytes and back.
type Codec interface {
	// Name is the format name used in config ("json", "yaml", "msgpack").
	Name() string
	Marshal(snap institute.InstituteSnapshot) ([]byte, error)
	Unmarshal(data []byte) (institute.InstituteSnapshot, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// JSON
// ══════════════════════════════════════════════════════════════════════════════

// JSON writes UTF-8 JSON indented by two spaces with keys in document order.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(snap institute.InstituteSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("document: encode json: %w", err)
	}
	return buf.Bytes(), nil
}

func (JSON) Unmarshal(data []byte) (institute.InstituteSnapshot, error) {
	var snap institute.InstituteSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, decodeError("json", err)
	}
	return snap, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// YAML
// ══════════════════════════════════════════════════════════════════════════════

// YAML writes a block-style YAML document.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(snap institute.InstituteSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("document: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("document: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte) (institute.InstituteSnapshot, error) {
	var snap institute.InstituteSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, decodeError("yaml", err)
	}
	return snap, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGEPACK
// ══════════════════════════════════════════════════════════════════════════════

// MsgPack writes a compact binary document.
type MsgPack struct{}

func (MsgPack) Name() string { return "msgpack" }

func (MsgPack) Marshal(snap institute.InstituteSnapshot) ([]byte, error) {
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("document: encode msgpack: %w", err)
	}
	return data, nil
}

func (MsgPack) Unmarshal(data []byte) (institute.InstituteSnapshot, error) {
	var snap institute.InstituteSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return snap, decodeError("msgpack", err)
	}
	return snap, nil
}

func decodeError(format string, err error) error {
	return shared.WrapError("document", "Decode", shared.ErrInvalidFormat,
		fmt.Sprintf("malformed %s document", format), err)
}

// ══════════════════════════════════════════════════════════════════════════════
// SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// ByName returns the codec for a format name. An empty name means JSON.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "msgpack", "mp":
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("document: unknown format %q", name)
	}
}

// ForPath picks a codec from the file extension. Unknown extensions get JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	case ".msgpack", ".mp":
		return MsgPack{}
	default:
		return JSON{}
	}
}

// Encode snapshots inst and marshals it with codec.
func Encode(codec Codec, inst *institute.Institute) ([]byte, error) {
	return codec.Marshal(inst.Snapshot())
}

// Decode unmarshals data with codec and rebuilds the institute, re-running
// every domain validation.
func Decode(codec Codec, data []byte) (*institute.Institute, error) {
	snap, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return institute.FromSnapshot(snap)
}

// Digest returns a hex BLAKE2b-256 of an encoded document. Stores compare
// digests to skip writing an unchanged revision.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
