package cmd

import "github.com/ardnew/stx/pkg"

var (
	ErrReadSource  = pkg.NewError("read source")
	ErrJSONMarshal = pkg.NewError("marshal JSON")
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrWriteOutput = pkg.NewError("write output")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
)
