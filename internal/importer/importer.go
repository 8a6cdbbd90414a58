// Package importer normalizes bank and broker CSV exports into ledger
// transactions.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Preset is a named column mapping for a known export format.
type Preset struct {
	Name       string
	Mapping    Mapping
	DateFormat string
	Sign       SignConvention
}

// Normalizer returns a normalizer for the preset. Non-empty account
// defaults override the preset's.
func (p Preset) Normalizer(account, offsetAccount string) Normalizer {
	m := p.Mapping
	if account != "" {
		m.DefaultAccount = account
	}
	if offsetAccount != "" {
		m.DefaultOffsetAccount = offsetAccount
	}
	return Normalizer{Mapping: m, DateFormat: p.DateFormat, Sign: p.Sign}
}

// Registry holds named presets.
type Registry struct {
	presets map[string]Preset
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty preset registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]Preset)}
}

// Register adds a preset. Panics on duplicate name.
func (r *Registry) Register(p Preset) {
	key := strings.ToLower(p.Name)
	if _, ok := r.presets[key]; ok {
		panic("duplicate import preset: " + key)
	}
	r.presets[key] = p
}

// Get returns the preset with the given name.
func (r *Registry) Get(name string) (Preset, bool) {
	p, ok := r.presets[strings.ToLower(name)]
	return p, ok
}

// Names returns the registered preset names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for k := range r.presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in presets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GenericPreset)
	r.Register(ChasePreset)
	return r
}

// GenericPreset reads CSVs whose columns are named after the ledger's
// transaction fields. Amounts are made absolute.
var GenericPreset = Preset{
	Name: "generic",
	Mapping: Mapping{
		Date:          "date",
		Amount:        "amount",
		Quantity:      "quantity",
		Account:       "account",
		OffsetAccount: "offset_account",
		Payee:         "payee",
		Note:          "note",
	},
	DateFormat: DefaultDateFormat,
	Sign:       SignAbsolute,
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
