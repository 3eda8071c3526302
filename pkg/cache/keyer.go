package cache

// Keyer derives cache keys for pipeline artifacts.
//
// Keys are built from a content hash of the input plus every option that
// changes the output, so two requests share an entry only when they would
// produce identical bytes.
type Keyer interface {
	ConvertKey(inputHash string, opts ConvertKeyOpts) string
	GraphKey(structureHash string, opts GraphKeyOpts) string
	InspectKey(inputHash string, types string) string
}

// ConvertKeyOpts are the options that influence a re-encoded structure.
type ConvertKeyOpts struct {
	Version  uint8  `json:"version"`
	Compress bool   `json:"compress"`
	Types    string `json:"types"` // hash of the block type table
}

// GraphKeyOpts are the options that influence a rendered link graph.
type GraphKeyOpts struct {
	Format string `json:"format"`
	Loads  bool   `json:"loads"`
	Types  string `json:"types"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) ConvertKey(inputHash string, opts ConvertKeyOpts) string {
	return hashKey("convert", inputHash, opts)
}

func (DefaultKeyer) GraphKey(structureHash string, opts GraphKeyOpts) string {
	return hashKey("graph", structureHash, opts)
}

func (DefaultKeyer) InspectKey(inputHash string, types string) string {
	return hashKey("inspect", inputHash, types)
}

var _ Keyer = DefaultKeyer{}
