package samples

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var samplesYAML []byte

// Sample is a named buggy snippet offered for quick testing.
type Sample struct {
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

var catalog []Sample

func init() {
	if err := yaml.Unmarshal(samplesYAML, &catalog); err != nil {
		panic(fmt.Sprintf("samples: bad embedded catalog: %v", err))
	}
}

// Catalog returns the fixed sample list in declaration order.
func Catalog() []Sample {
	out := make([]Sample, len(catalog))
	copy(out, catalog)
	return out
}

// Find returns the sample with the given name.
func Find(name string) (Sample, bool) {
	for _, s := range catalog {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
