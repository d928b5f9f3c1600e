package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testData := map[string]struct {
		level  string
		format string
		logged bool
		isJSON bool
	}{
		"json info": {
			level:  "info",
			format: FormatJSON,
			logged: true,
			isJSON: true,
		},
		"unknown level defaults to info": {
			level:  "verbose",
			format: FormatJSON,
			logged: true,
			isJSON: true,
		},
		"filtered by level": {
			level:  "error",
			format: FormatJSON,
		},
		"console": {
			level:  "debug",
			format: FormatConsole,
			logged: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Component(New(td.level, td.format, &buf), "api")
			logger.Info().Int("periods", 12).Msg("forecast")

			if !td.logged {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), "forecast")
			if !td.isJSON {
				return
			}

			var line map[string]any
			require.Nil(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, "api", line["component"])
			assert.Equal(t, "info", line["level"])
			assert.Equal(t, 12.0, line["periods"])
			assert.Contains(t, line, "time")
		})
	}
}
