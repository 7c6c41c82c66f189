package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/arcvault/uups-cli/internal/domain/config"
)

type Renderer[T any] interface {
	Render(result T) error
}

// RenderStructured writes v as json or yaml
func RenderStructured(out io.Writer, format config.OutputFormat, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured output %q", format)
	}
}

func isStructured(format config.OutputFormat) bool {
	return format == config.OutputJSON || format == config.OutputYAML
}
