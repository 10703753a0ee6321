package core

import (
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// sourceNamespace scopes the name-based UUIDs derived from file content.
var sourceNamespace = uuid.MustParse("6f1c2a8e-4b7d-5e39-9a0c-3d2f8e41b6a7")

// SourceID returns the deterministic identifier of a file's bytes.
func SourceID(data []byte) string {
	return uuid.NewSHA1(sourceNamespace, data).String()
}

// Parser converts logs for one device/configuration pairing.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	device Device
	config *Configuration
	opts   ParseOptions
}

// NewParser validates the device/configuration pairing and resolves the
// configuration's requirements. No file is read.
func NewParser(device, config string, opts ParseOptions) (*Parser, error) {
	d, err := CheckCombination(device, config)
	if err != nil {
		return nil, err
	}
	cfg, err := NewConfiguration(config, opts.registry())
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Device == "" {
			ce.Device = device
		}
		return nil, err
	}
	return &Parser{device: d, config: cfg, opts: opts}, nil
}

// Device returns the parser's device.
func (p *Parser) Device() Device {
	return p.device
}

// Configuration returns the parser's configuration.
func (p *Parser) Configuration() *Configuration {
	return p.config
}

// ParseFile reads and parses the log at path.
func (p *Parser) ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	defer f.Close()

	data, err := ReadInput(f, p.opts.MaxInputBytes)
	if err != nil {
		return nil, ioError(path, err)
	}
	return p.parse(data, path)
}

// ParseReader reads r to the end and parses it.
func (p *Parser) ParseReader(r io.Reader) (*Dataset, error) {
	data, err := ReadInput(r, p.opts.MaxInputBytes)
	if err != nil {
		return nil, ioError("", err)
	}
	return p.parse(data, "")
}

// ParseBytes parses an in-memory log.
func (p *Parser) ParseBytes(data []byte) (*Dataset, error) {
	return p.parse(data, "")
}

func (p *Parser) parse(data []byte, source string) (*Dataset, error) {
	log := p.opts.logger()
	if source != "" {
		log = log.With("file", source)
	}
	start := time.Now()

	raw, err := ParseRaw(data)
	if err != nil {
		return nil, err
	}
	log.Debug("raw file parsed",
		"header_keys", len(raw.Header),
		"columns", raw.NumColumns(),
		"rows", len(raw.DataRows),
	)

	if err := p.device.ValidateHeader(raw.Header); err != nil {
		return nil, err
	}
	if err := p.config.ValidateColumns(raw.ColumnNames); err != nil {
		return nil, err
	}

	reg := p.opts.registry()
	ds, err := Convert(raw, reg, p.opts)
	if err != nil {
		return nil, err
	}

	ids := ResolveIdentifiers(raw.ColumnNames, p.opts.PreserveOriginalNames)
	for i := range ds.Columns {
		ds.Columns[i].Identifier = ids[i]
	}

	ds.Metadata = p.metadata(raw, reg, data)

	log.Debug("dataset built",
		"device", p.device.Model(),
		"config", p.config.Name(),
		"rows", ds.Rows,
		"columns", len(ds.Columns),
		"fallback_columns", ds.FallbackCount(),
		"duration", time.Since(start),
	)
	return ds, nil
}

// metadata merges every header key with the pipeline's own keys.
// Pipeline keys win over a header key of the same name.
func (p *Parser) metadata(raw *RawFile, reg *Registry, data []byte) map[string]string {
	md := make(map[string]string, len(raw.Header)+16)
	for k, v := range raw.Header {
		md[k] = v
	}
	for k, v := range p.device.ExtractMetadata(raw.Header) {
		md[k] = v
	}
	md[MetaConfig] = p.config.Name()
	md[MetaRegistryVersion] = reg.Version()
	md[MetaSourceID] = SourceID(data)
	md[MetaRows] = strconv.Itoa(len(raw.DataRows))
	md[MetaColumns] = strconv.Itoa(raw.NumColumns())
	return md
}

// ParseFile parses the log at path for a device/configuration pairing.
// The pairing is checked before the file is opened.
func ParseFile(path, device, config string, opts ParseOptions) (*Dataset, error) {
	p, err := NewParser(device, config, opts)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

// ParseBytes parses an in-memory log for a device/configuration pairing.
func ParseBytes(data []byte, device, config string, opts ParseOptions) (*Dataset, error) {
	p, err := NewParser(device, config, opts)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(data)
}
