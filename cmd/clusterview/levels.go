// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/levels"
)

// listLevels prints each embedded template with its node and
// connection counts and a short source digest.
func listLevels(w io.Writer) error {
	templates, err := levels.Templates()
	if err != nil {
		return cli.Internal("%w", err)
	}
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "NAME\tNODES\tCONNECTIONS\tDIGEST\tTITLE")
	for _, template := range templates {
		fmt.Fprintf(table, "%s\t%d\t%d\t%s\t%s\n",
			template.Name,
			len(template.Snapshot.Nodes),
			len(template.Snapshot.Connections),
			template.SourceHash[:12],
			template.Snapshot.Title,
		)
	}
	return table.Flush()
}
