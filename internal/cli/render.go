package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/gobeaver/datafy"
	"github.com/gobeaver/datafy/frame"
)

type EncodingType string

const (
	EncodingTable  EncodingType = "table"
	EncodingJSON   EncodingType = "json"
	EncodingNDJSON EncodingType = "ndjson"
	EncodingYAML   EncodingType = "yaml"
)

var allEncodings = []EncodingType{
	EncodingTable,
	EncodingJSON,
	EncodingNDJSON,
	EncodingYAML,
}

func joinEncodings() string {
	names := make([]string, len(allEncodings))
	for i, e := range allEncodings {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// itemSummary is the printable view of a resolved item. Payloads are
// summarized, never dumped.
type itemSummary struct {
	Source   string    `json:"source"`
	Type     string    `json:"type"`
	Kind     string    `json:"kind,omitempty"`
	Records  int       `json:"records"`
	Columns  []string  `json:"columns,omitempty"`
	Bounds   []float64 `json:"bounds,omitempty"`
	Encoding string    `json:"encoding,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
	URL      string    `json:"url,omitempty"`
}

func summarize(item datafy.ResolvedItem) itemSummary {
	s := itemSummary{
		Source:   item.SourcePath,
		Type:     item.TypeTag.String(),
		Encoding: item.Encoding,
		Checksum: item.Checksum,
	}
	if item.Response != nil {
		s.URL = item.Response.URL
	}

	switch p := item.Payload.(type) {
	case *frame.Table:
		s.Records = p.Len()
		s.Columns = p.Columns
	case *frame.Features:
		s.Records = p.Len()
		if p.Len() > 0 {
			b := p.Bound()
			s.Bounds = []float64{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()}
		}
	case *frame.Raw:
		s.Records = 1
	}
	if item.Payload != nil {
		s.Kind = item.Payload.Kind().String()
	}
	return s
}

func encodeItems(w io.Writer, output EncodingType, items []datafy.ResolvedItem) error {
	summaries := make([]itemSummary, len(items))
	for i, item := range items {
		summaries[i] = summarize(item)
	}

	switch output {
	case EncodingTable:
		return encodeTable(w, summaries)
	case EncodingJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case EncodingNDJSON:
		enc := json.NewEncoder(w)
		for _, s := range summaries {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case EncodingYAML:
		data, err := yaml.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("encoding items as yaml failed: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}
}

func encodeTable(w io.Writer, summaries []itemSummary) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Source", "Type", "Kind", "Records", "Checksum"})
	for _, s := range summaries {
		kind := s.Kind
		if kind == "" {
			kind = "-"
		}
		t.AppendRow(table.Row{s.Source, s.Type, kind, s.Records, s.Checksum})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}
