package voice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type snapshotFile struct {
	Voices []Voice `yaml:"voices"`
}

// LoadSnapshot reads a captured platform voice list from a YAML file of the
// form:
//
//	voices:
//	  - name: Google 日本語
//	    lang: ja-JP
func LoadSnapshot(path string) ([]Voice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot decodes a YAML voice list.
func ParseSnapshot(data []byte) ([]Voice, error) {
	var file snapshotFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode voice snapshot: %w", err)
	}
	return file.Voices, nil
}
