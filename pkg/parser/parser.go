package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/scizorman/go-ndjson"

	"github.com/yurifrl/cardcsv/pkg/models"
)

// ErrMalformedInput is returned when the input cannot be read or is not a
// list of card objects.
var ErrMalformedInput = errors.New("malformed input")

type FileType string

const (
	JSONArray FileType = "json"
	NDJSON    FileType = "ndjson"
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes decodes the records held in data. The filename only selects
// the format; compression suffixes are ignored.
func (p *Parser) ProcessBytes(data []byte, filename string) ([]models.Record, error) {
	fileType := DetectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	switch fileType {
	case NDJSON:
		return p.ParseNDJSON(data)
	default:
		return p.ParseJSON(data)
	}
}

// ParseJSON decodes a document whose top level is a JSON array of objects.
func (p *Parser) ParseJSON(data []byte) ([]models.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value is not a JSON array", ErrMalformedInput)
	}

	records, err := models.DecodeRecords(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	for i, record := range records {
		if record == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedInput, i)
		}
	}
	p.logger.Debug("decoded records", "count", len(records))
	return records, nil
}

// ParseNDJSON decodes one JSON object per line.
func (p *Parser) ParseNDJSON(data []byte) ([]models.Record, error) {
	var lines []json.RawMessage
	if err := ndjson.Unmarshal(bytes.TrimSpace(data), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	records := make([]models.Record, 0, len(lines))
	for i, line := range lines {
		record, err := models.DecodeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, i+1, err)
		}
		if record == nil {
			return nil, fmt.Errorf("%w: line %d is not an object", ErrMalformedInput, i+1)
		}
		records = append(records, record)
	}
	p.logger.Debug("decoded records", "count", len(records))
	return records, nil
}

// DetectType picks the input format from the file name.
func DetectType(filename string) FileType {
	name := strings.ToLower(StripCompression(filename))
	switch filepath.Ext(name) {
	case ".ndjson", ".jsonl":
		return NDJSON
	}
	return JSONArray
}
