package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FormatVersion is written to every manifest.
const FormatVersion = "1.0"

// TimestampFormat is the layout of last_updated. Timestamps are always UTC.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Layouts accepted when reading last_updated. The last one matches naive
// UTC timestamps without a zone designator.
var timestampLayouts = []string{
	TimestampFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Asset is one image file listed in a manifest.
type Asset struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Manifest indexes the files of one asset type. It is encoded as
// {"version": ..., "last_updated": ..., "<asset type>": [...]} with keys in
// that order.
type Manifest struct {
	AssetType   string
	Version     string
	LastUpdated *time.Time
	Assets      []Asset
}

// Count returns the number of assets in the manifest.
func (m *Manifest) Count() int {
	return len(m.Assets)
}

// MarshalJSON implements json.Marshaler.
func (m Manifest) MarshalJSON() ([]byte, error) {
	if m.AssetType == "" {
		return nil, fmt.Errorf("manifest has no asset type")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeMember(&buf, "version", m.Version); err != nil {
		return nil, err
	}
	buf.WriteByte(',')

	var lastUpdated *string
	if m.LastUpdated != nil {
		ts := m.LastUpdated.UTC().Format(TimestampFormat)
		lastUpdated = &ts
	}
	if err := writeMember(&buf, "last_updated", lastUpdated); err != nil {
		return nil, err
	}
	buf.WriteByte(',')

	list := m.Assets
	if list == nil {
		list = []Asset{}
	}
	if err := writeMember(&buf, m.AssetType, list); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. When AssetType is empty it is
// taken from the single key other than version and last_updated.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var version string
	if raw, ok := fields["version"]; ok {
		if err := json.Unmarshal(raw, &version); err != nil {
			return fmt.Errorf("version: %w", err)
		}
	}

	var lastUpdated *time.Time
	if raw, ok := fields["last_updated"]; ok {
		var ts *string
		if err := json.Unmarshal(raw, &ts); err != nil {
			return fmt.Errorf("last_updated: %w", err)
		}
		if ts != nil {
			parsed, err := parseTimestamp(*ts)
			if err != nil {
				return fmt.Errorf("last_updated: %w", err)
			}
			lastUpdated = &parsed
		}
	}

	assetType := m.AssetType
	if assetType == "" {
		for key := range fields {
			if key == "version" || key == "last_updated" {
				continue
			}
			if assetType != "" {
				return fmt.Errorf("ambiguous asset list: %q and %q", assetType, key)
			}
			assetType = key
		}
	}

	var list []Asset
	if raw, ok := fields[assetType]; ok && assetType != "" {
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("%s: %w", assetType, err)
		}
	}

	m.AssetType = assetType
	m.Version = version
	m.LastUpdated = lastUpdated
	m.Assets = list
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Encode returns the manifest as JSON indented by two spaces.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
