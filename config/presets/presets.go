// Package presets contains named configurations that replace the defaults.
package presets

import (
	"fmt"
	"sort"

	"github.com/spacemeshos/go-agewitness/config"
)

var presets = map[string]config.Config{}

func init() {
	register("mainnet", config.MainnetConfig())
}

func register(name string, conf config.Config) {
	if _, exist := presets[name]; exist {
		panic(fmt.Sprintf("preset with name %s already exists", name))
	}
	presets[name] = conf
}

// Options returns the names of all presets.
func Options() []string {
	rst := make([]string, 0, len(presets))
	for name := range presets {
		rst = append(rst, name)
	}
	sort.Strings(rst)
	return rst
}

// Get returns the preset with the given name.
func Get(name string) (config.Config, error) {
	conf, exists := presets[name]
	if !exists {
		return conf, fmt.Errorf("preset %s is not registered. select one from the options %+s", name, Options())
	}
	conf.Preset = name
	return conf, nil
}
