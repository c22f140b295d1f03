// Package dataset builds XML datasets of database contents, in the layout
// DbUnit style fixture loaders read:
//
//	<dataset>
//	  <table name="foo">
//	    <column>id</column>
//	    <column>name</column>
//	    <row>
//	      <value>1</value>
//	      <null></null>
//	    </row>
//	  </table>
//	</dataset>
package dataset

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrNilDescriptor is returned by New when no descriptor is given.
var ErrNilDescriptor = errors.New("dataset: descriptor must not be nil")

// Row holds the values of one table row in column order. A nil element is
// SQL NULL.
type Row []*string

// Descriptor describes the tables to export.
type Descriptor interface {
	Tables(ctx context.Context) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]string, error)
	TableValues(ctx context.Context, table string) ([]Row, error)
}

type xmlDataset struct {
	XMLName xml.Name   `xml:"dataset"`
	Tables  []xmlTable `xml:"table"`
}

type xmlTable struct {
	Name    string   `xml:"name,attr"`
	Columns []string `xml:"column"`
	Rows    []xmlRow `xml:"row"`
}

type xmlRow struct {
	Fields []xmlField
}

// xmlField is either <value>text</value> or <null/>, told apart by XMLName.
type xmlField struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// Extractor turns a Descriptor into an XML dataset. The document is built
// on first use and reused afterwards, so XMLDataset and SaveXMLDataset can
// be called in any order and produce the same bytes.
type Extractor struct {
	desc Descriptor

	mu  sync.Mutex
	doc []byte
}

func New(desc Descriptor) (*Extractor, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}
	return &Extractor{desc: desc}, nil
}

// XMLDataset returns the dataset document.
func (e *Extractor) XMLDataset(ctx context.Context) ([]byte, error) {
	doc, err := e.document(ctx)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), doc...), nil
}

// SaveXMLDataset writes the dataset document to path.
func (e *Extractor) SaveXMLDataset(ctx context.Context, path string) error {
	doc, err := e.document(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, doc, 0o644)
}

func (e *Extractor) document(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc != nil {
		return e.doc, nil
	}
	doc, err := e.build(ctx)
	if err != nil {
		return nil, err
	}
	e.doc = doc
	return doc, nil
}

func (e *Extractor) build(ctx context.Context) ([]byte, error) {
	tables, err := e.desc.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	ds := xmlDataset{Tables: make([]xmlTable, 0, len(tables))}
	for _, name := range tables {
		t, err := e.buildTable(ctx, name)
		if err != nil {
			return nil, err
		}
		ds.Tables = append(ds.Tables, t)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (e *Extractor) buildTable(ctx context.Context, name string) (xmlTable, error) {
	columns, err := e.desc.TableColumns(ctx, name)
	if err != nil {
		return xmlTable{}, fmt.Errorf("columns of %s: %w", name, err)
	}
	rows, err := e.desc.TableValues(ctx, name)
	if err != nil {
		return xmlTable{}, fmt.Errorf("values of %s: %w", name, err)
	}

	t := xmlTable{Name: name, Columns: columns, Rows: make([]xmlRow, 0, len(rows))}
	for _, row := range rows {
		r := xmlRow{Fields: make([]xmlField, 0, len(row))}
		for _, v := range row {
			if v == nil {
				r.Fields = append(r.Fields, xmlField{XMLName: xml.Name{Local: "null"}})
				continue
			}
			r.Fields = append(r.Fields, xmlField{XMLName: xml.Name{Local: "value"}, Text: *v})
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// StaticDescriptor is a Descriptor over in-memory tables, listed in Order.
type StaticDescriptor struct {
	Order   []string
	Columns map[string][]string
	Values  map[string][]Row
}

func (s *StaticDescriptor) Tables(context.Context) ([]string, error) {
	return s.Order, nil
}

func (s *StaticDescriptor) TableColumns(_ context.Context, table string) ([]string, error) {
	cols, ok := s.Columns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}

func (s *StaticDescriptor) TableValues(_ context.Context, table string) ([]Row, error) {
	if _, ok := s.Columns[table]; !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return s.Values[table], nil
}
