package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/stx/pkg"
)

// Version prints the version of stx.
type Version struct{}

// Run executes the version command.
func (Version) Run(context.Context) error {
	_, err := fmt.Println(pkg.Name, pkg.Version())

	return err
}
