package storage

import (
	"encoding/json"
	"io"
)

func ExportJSON(w io.Writer, m *Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}
