package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-drift/nodeward/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the page in the terminal",
	Long: `Render the page catalog in the terminal. Sections reveal and
statistics count up as they scroll into view.

Keys:
  j, Down       scroll one row
  k, Up         scroll back one row
  Space, PgDn   scroll one screen
  PgUp          scroll back one screen
  g, Home       top
  G, End        bottom
  q, Esc        quit`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(cfg.Content)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	// Log output would land on the screen, so the preview runs silent.
	p, err := preview.New(screen, catalog, preview.Options{
		FrameInterval: cfg.Preview.FrameInterval,
		RowHeight:     cfg.Preview.RowHeight,
		Logger:        zap.NewNop(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Run(ctx)
}
