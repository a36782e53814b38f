package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/client/config"
	"golang.org/x/term"
)

var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// asTable reports whether output to w should be a table rather than JSON.
func (a *app) asTable(w io.Writer) bool {
	switch a.cfg.Output {
	case config.OutputTable:
		return true
	case config.OutputJSON:
		return false
	}
	return isTerminal(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON, or calls table when a table is wanted.
func (a *app) emit(w io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	if !a.asTable(w) {
		return writeJSON(w, v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func dims(w, h int) string {
	if w == 0 && h == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func assetHeader(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "\tID\tNAME\tSIZE\tDIMENSIONS\tSTATUS")
}

func assetRow(tw *tabwriter.Writer, x api.Asset, selected bool) {
	mark := ""
	if selected {
		mark = "*"
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, x.ID, x.FileName, humanSize(x.ByteSize), dims(x.Width, x.Height), x.Status)
}

func assetTable(list api.AssetList) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		assetHeader(tw)
		for _, x := range list.Assets {
			assetRow(tw, x, x.ID == list.SelectedID)
		}
		if list.Processing {
			fmt.Fprintln(tw, "\nprocessing: on")
		}
	}
}

func uploadTable(resp api.UploadResponse) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		assetHeader(tw)
		for _, x := range resp.Accepted {
			assetRow(tw, x, false)
		}
		for _, r := range resp.Rejected {
			fmt.Fprintf(tw, "rejected %s (%s): %s\n", r.Name, humanSize(r.Size), r.Reason)
		}
	}
}

func settingsString(s *api.Settings) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("x%g %s q%d", s.ScaleFactor, s.Algorithm, s.Quality)
}

func processedTable(list api.ProcessedList) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSOURCE\tNAME\tRESULT\tSETTINGS\tDOWNLOAD")
		for _, p := range list.Processed {
			download := "no"
			if p.Downloadable {
				download = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.SourceID, p.FileName, dims(p.ResultWidth, p.ResultHeight), settingsString(p.Settings), download)
		}
	}
}

func keyValue(pairs ...string) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		for i := 0; i+1 < len(pairs); i += 2 {
			fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], pairs[i+1])
		}
	}
}
