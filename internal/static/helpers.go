package static

import (
	"bytes"
	"html/template"
)

// IndexData holds data for rendering the gallery page
type IndexData struct {
	Title      string
	AssetTypes []string
}

// RenderIndex renders the embedded gallery page
func RenderIndex(data IndexData) ([]byte, error) {
	indexHTML, err := assets.ReadFile("index.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("index").Parse(string(indexHTML))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
