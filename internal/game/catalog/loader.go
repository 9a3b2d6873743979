package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bosses.yaml
var defaultCatalogYAML []byte

// yamlCatalogFile is the top-level YAML structure for catalog files.
type yamlCatalogFile struct {
	Bosses []yamlBoss `yaml:"bosses"`
}

// yamlBoss is the YAML representation of a boss definition.
type yamlBoss struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Image        string   `yaml:"image"`
	Difficulty   string   `yaml:"difficulty"`
	Quotes       []string `yaml:"quotes"`
	DefeatQuotes []string `yaml:"defeat_quotes"`
}

// LoadFromFile reads and validates a boss catalog YAML file.
//
// Precondition: path must point to a valid YAML catalog file.
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a boss catalog from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the catalog schema.
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadFromBytes(data []byte) (*Catalog, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	bosses := make([]Boss, len(file.Bosses))
	for i, yb := range file.Bosses {
		bosses[i] = Boss{
			ID:           yb.ID,
			Name:         yb.Name,
			Image:        yb.Image,
			Difficulty:   Difficulty(yb.Difficulty),
			Quotes:       yb.Quotes,
			DefeatQuotes: yb.DefeatQuotes,
		}
	}

	cat, err := New(bosses)
	if err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return cat, nil
}

// Default returns the catalog embedded in the binary.
//
// Postcondition: Returns a valid Catalog; panics only if the embedded data
// is corrupt, which is a build defect.
func Default() *Catalog {
	cat, err := LoadFromBytes(defaultCatalogYAML)
	if err != nil {
		panic("catalog: embedded bosses.yaml is invalid: " + err.Error())
	}
	return cat
}
