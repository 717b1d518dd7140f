package codec

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/revlog/internal/model"
)

// The human-editable form. Field names and nesting follow the canonical
// model's yaml tags; line ranges emit as flow pairs [start, end].

func decodeYAML(data []byte) (*model.Review, error) {
	var r model.Review
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &ParseError{Format: FormatYAML, Err: err}
	}
	return &r, nil
}

func encodeYAML(r *model.Review) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
