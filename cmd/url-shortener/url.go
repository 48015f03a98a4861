package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	"github.com/vadimbarashkov/shortlink/internal/app"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

func newShortenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shorten <url>",
		Short: "Allocate a short code for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := delivery.ValidateOriginalURL(args[0]); err != nil {
				return fmt.Errorf("invalid url: %w", err)
			}

			db, err := app.OpenDB(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			uc := app.NewURLUseCase(opts.cfg, db, app.NewLogger(opts.cfg).Logger)

			shortened, err := uc.ShortenURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printURL(cmd, opts.cfg.BaseURL, shortened)
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <code>",
		Short: "Show a short code without recording a click",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.OpenDB(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			uc := app.NewURLUseCase(opts.cfg, db, app.NewLogger(opts.cfg).Logger)

			found, err := uc.FindByShortCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printURL(cmd, opts.cfg.BaseURL, found)
			return nil
		},
	}
}

func printURL(cmd *cobra.Command, baseURL string, u *entity.URL) {
	cmd.Printf("Short URL:    %s/%s\n", strings.TrimRight(baseURL, "/"), u.ShortCode)
	cmd.Printf("Original URL: %s\n", u.OriginalURL)
	cmd.Printf("Clicks:       %d\n", u.Clicks)
	cmd.Printf("Created at:   %s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
}
