package presets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	require.Equal(t, []string{"mainnet", "standalone"}, Options())
	for _, name := range Options() {
		t.Run(name, func(t *testing.T) {
			conf, err := Get(name)
			require.NoError(t, err)
			require.Equal(t, name, conf.Preset)
			require.NoError(t, conf.Validate())
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Get("devnet")
	require.ErrorContains(t, err, "devnet")
}
