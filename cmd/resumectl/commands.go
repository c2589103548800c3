package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumesrv"
	"github.com/Abraxas-365/resumelens/recruitment/viewmodel"
	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resumes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := c.ctrl.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summaries)
		},
	}
}

func (c *cli) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <resume-id>",
		Short: "Print the assembled view of a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := c.ctrl.Open(cmd.Context(), kernel.NewResumeID(args[0]))
			if perr := printJSON(cmd.OutOrStdout(), vm); perr != nil {
				return perr
			}
			return err
		},
	}
}

func (c *cli) reanalyzeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "reanalyze <resume-id>",
		Short: "Request a new analysis run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.ctrl.Open(ctx, kernel.NewResumeID(args[0])); err != nil {
				return err
			}

			vm, err := c.ctrl.Reanalyze(ctx)
			if err != nil {
				_ = printJSON(cmd.OutOrStdout(), vm)
				return err
			}
			if !watch {
				return printJSON(cmd.OutOrStdout(), vm)
			}
			return c.watch(cmd, c.cfg.Watch.Interval)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Wait until the new analysis finishes")
	return cmd
}

func (c *cli) uploadCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a PDF, DOC or DOCX resume from disk or s3://bucket/key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := c.infra.Files.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			created, err := c.ctrl.Upload(ctx, resume.UploadRequest{
				Title:    title,
				FileName: f.Name,
				Size:     f.Size,
				Content:  f.Body,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resume.ToSummary(*created))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Resume title (defaults to the file name)")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resume-id>",
		Short: "Delete a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := kernel.NewResumeID(args[0])
			if err := c.ctrl.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <resume-id>",
		Short: "Refresh a resume until its analysis completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.ctrl.Open(cmd.Context(), kernel.NewResumeID(args[0])); err != nil {
				return err
			}
			if interval <= 0 {
				interval = c.cfg.Watch.Interval
			}
			return c.watch(cmd, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default from config)")
	return cmd
}

func (c *cli) watch(cmd *cobra.Command, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		mu   sync.Mutex
		last resume.Status
	)
	unsubscribe := c.ctrl.Subscribe(func(vm viewmodel.ViewModel) {
		mu.Lock()
		defer mu.Unlock()
		if vm.Status == nil || vm.Status.Status == last {
			return
		}
		last = vm.Status.Status
		fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s\n", time.Now().Format(time.TimeOnly), vm.Status.Label)
	})
	defer unsubscribe()

	vm, err := resumesrv.NewWatcher(c.ctrl, interval).Watch(ctx)
	if perr := printJSON(cmd.OutOrStdout(), vm); perr != nil {
		return perr
	}
	return err
}

func (c *cli) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <resume-id>",
		Short: "Print the download link of the original document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.ctrl.DownloadURL(kernel.NewResumeID(args[0])))
			return nil
		},
	}
}
