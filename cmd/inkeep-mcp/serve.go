package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/mcp/transport/httptransport"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var listen, endpoint string

	cmd := &cobra.Command{
		Use:       "serve [stdio|http]",
		Short:     "Serve MCP over stdio (default) or streamable HTTP",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"stdio", "http"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := c.newServer(cmd)
			if err != nil {
				return err
			}

			mode := "stdio"
			if len(args) > 0 {
				mode = args[0]
			}
			if mode == "stdio" {
				return s.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			tr := httptransport.NewHTTPTransport(s.MCPServer(), values.StringsCoalesce(endpoint, c.cfg.HTTP.Endpoint)).
				WithAddr(values.StringsCoalesce(listen, c.cfg.HTTP.Listen)).
				WithStateless(c.cfg.HTTP.IsStateless())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return tr.Start(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.KV(xlog.INFO, "status", "shutting_down")

				sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()
				if err := tr.Close(sctx); err != nil {
					return errors.Wrap(err, "shutdown failed")
				}
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address, overrides http.listen")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "MCP endpoint path, overrides http.endpoint")
	return cmd
}
