package codec

import (
	"encoding/json"

	"github.com/sprite-ai/revlog/internal/model"
)

// The programmatic form. It may carry one extra top-level field,
// "@context", pointing at a vocabulary document; the core stores and
// round-trips it but never interprets it.

func decodeJSON(data []byte) (*model.Review, error) {
	var r model.Review
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	return &r, nil
}

func encodeJSON(r *model.Review) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
