package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

type legacyParams struct {
	XMLName xml.Name      `xml:"params"`
	Version string        `xml:"version,attr"`
	Params  []legacyParam `xml:"param"`
}

type legacyParam struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

// DecodeFilterConfig parses the legacy XML encoding into cfg, replacing its parameters.
// Blank content is not an error and leaves cfg untouched.
func DecodeFilterConfig(data []byte, cfg *domain.FilterConfig) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var doc legacyParams
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("filter configuration %s: %v: %w", cfg.Name, err, domain.ErrMalformedData)
	}

	version := cfg.Version
	if doc.Version != "" {
		v, err := strconv.Atoi(doc.Version)
		if err != nil {
			return fmt.Errorf("filter configuration %s: bad version %q: %w", cfg.Name, doc.Version, domain.ErrMalformedData)
		}
		version = v
	}

	params := make(map[string]string, len(doc.Params))
	for _, p := range doc.Params {
		if p.Name == "" {
			return fmt.Errorf("filter configuration %s: parameter without name: %w", cfg.Name, domain.ErrMalformedData)
		}
		params[p.Name] = strings.TrimSpace(p.Value)
	}
	cfg.Reset(version, params)
	return nil
}

// EncodeFilterConfig writes cfg in the legacy XML encoding, parameters sorted by name.
func EncodeFilterConfig(cfg *domain.FilterConfig) ([]byte, error) {
	doc := legacyParams{Version: strconv.Itoa(cfg.Version)}
	names := make([]string, 0, len(cfg.Params))
	for name := range cfg.Params {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		doc.Params = append(doc.Params, legacyParam{Name: name, Type: "string", Value: cfg.Params[name]})
	}

	out, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, err
	}
	return append([]byte("<!DOCTYPE params>\n"), out...), nil
}
