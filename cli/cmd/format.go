package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

// encode writes v to w as JSON or YAML. An indent of zero selects the compact
// single-line form of either format.
func encode(ctx context.Context, w io.Writer, format string, indent int, v any) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case formatYAML:
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err = yaml.MarshalContext(ctx, v, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		if indent > 0 {
			data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(v)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		data = append(data, '\n')
	}

	if _, err := fmt.Fprint(w, string(data)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
