package archiver

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
)

// WriteReport prints the ignored and to-archive sections of a shortlist.
func WriteReport(w io.Writer, list *Shortlist) error {
	if err := writeSection(w, "Ignored", list.Ignored); err != nil {
		return err
	}
	return writeSection(w, "Paths to Archive", list.Archived)
}

func writeSection(w io.Writer, title string, entries []Entry) error {
	if _, err := fmt.Fprintf(w, "\n%s (%d)\n", title, len(entries)); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Path", "Age"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, entry := range entries {
		table.Append([]string{displayPath(entry), entry.Age.String()})
	}
	table.Render()
	return nil
}

// displayPath marks directories so they read as whole subtrees.
func displayPath(entry Entry) string {
	if entry.IsDir {
		return entry.RelPath + string(filepath.Separator)
	}
	return entry.RelPath
}
