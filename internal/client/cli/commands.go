package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/buildinfo"
	"github.com/dmitrijs2005/upscaler/internal/client/client"
	"github.com/dmitrijs2005/upscaler/internal/filex"
	"github.com/spf13/cobra"
)

func (a *app) sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Start a new session and store its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.CreateSession(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if err := a.saveToken(resp.Token); err != nil {
				return err
			}
			return a.emit(a.out(cmd), resp, keyValue("session", resp.SessionID, "token file", a.cfg.TokenFile))
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "upload <file>...",
		Short:   "Upload image files",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]client.UploadFile, 0, len(args))
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
				files = append(files, client.UploadFile{Name: filepath.Base(p), Data: data})
			}

			resp, err := a.client.Upload(cmd.Context(), files)
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), resp, uploadTable(resp))
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded assets; the selected one is marked with *",
		Args:    cobra.NoArgs,
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.ListAssets(cmd.Context())
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), list, assetTable(list))
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show one asset",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.client.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), x, func(tw *tabwriter.Writer) {
				assetHeader(tw)
				assetRow(tw, x, false)
			})
		},
	}
}

func (a *app) selectCmd() *cobra.Command {
	var clearSel bool

	cmd := &cobra.Command{
		Use:     "select [id]",
		Short:   "Select an asset, or show the current selection",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sel api.SelectionResponse
				err error
			)
			switch {
			case clearSel:
				sel, err = a.client.Select(cmd.Context(), "")
			case len(args) == 1:
				sel, err = a.client.Select(cmd.Context(), args[0])
			default:
				sel, err = a.client.Selection(cmd.Context())
			}
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), sel, func(tw *tabwriter.Writer) {
				if sel.Asset == nil {
					fmt.Fprintln(tw, "nothing selected")
					return
				}
				assetHeader(tw)
				assetRow(tw, *sel.Asset, true)
			})
		},
	}
	cmd.Flags().BoolVar(&clearSel, "clear", false, "clear the selection")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an asset and revoke its preview",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.client.Remove(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), api.RemoveResponse{Removed: removed},
				keyValue("removed", strconv.FormatBool(removed)))
		},
	}
}

func (a *app) processingCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "processing <on|off>",
		Short:     "Set the session-wide processing flag",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		PreRunE:   a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[0] {
			case "on", "true":
				on = true
			case "off", "false":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}

			got, err := a.client.SetProcessing(cmd.Context(), on)
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), api.ProcessingResponse{Processing: got},
				keyValue("processing", strconv.FormatBool(got)))
		},
	}
}

func (a *app) processCmd() *cobra.Command {
	var (
		scale     float64
		algorithm string
		quality   int
	)

	cmd := &cobra.Command{
		Use:     "process <id>",
		Short:   "Start upscaling an asset",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.ProcessRequest
			flags := cmd.Flags()
			if flags.Changed("scale") {
				req.ScaleFactor = &scale
			}
			if flags.Changed("algorithm") {
				req.Algorithm = &algorithm
			}
			if flags.Changed("quality") {
				req.Quality = &quality
			}

			x, err := a.client.Process(cmd.Context(), args[0], req)
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), x, func(tw *tabwriter.Writer) {
				assetHeader(tw)
				assetRow(tw, x, false)
			})
		},
	}

	f := cmd.Flags()
	f.Float64Var(&scale, "scale", 2, "scale factor, 1 to 8 in steps of 0.5")
	f.StringVar(&algorithm, "algorithm", "bicubic", "nearest, bilinear, bicubic, lanczos or ai-enhanced")
	f.IntVar(&quality, "quality", 90, "output quality, 1 to 100")
	return cmd
}

func (a *app) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cancel <id>",
		Short:   "Cancel a running upscale",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			cancelled, err := a.client.Cancel(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), api.CancelResponse{Cancelled: cancelled},
				keyValue("cancelled", strconv.FormatBool(cancelled)))
		},
	}
}

func (a *app) processedCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "processed",
		Short:   "List processed results",
		Args:    cobra.NoArgs,
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.Processed(cmd.Context())
			if err != nil {
				return explain(err)
			}
			return a.emit(a.out(cmd), list, processedTable(list))
		},
	}
}

func (a *app) downloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "download <processed-id>",
		Short:   "Save a processed result to disk",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client.Download(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			path, err := filex.WriteFile(dir, d.FileName, d.Data, 0o644)
			if err != nil {
				return err
			}
			out := map[string]any{"path": path, "bytes": len(d.Data)}
			return a.emit(a.out(cmd), out, keyValue("saved", path, "bytes", humanSize(int64(len(d.Data)))))
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "directory to save into")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Clear the session and forget its token",
		Args:    cobra.NoArgs,
		PreRunE: a.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.ClearSession(cmd.Context()); err != nil {
				return explain(err)
			}
			if err := a.removeToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "session cleared")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// no config or token needed
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
