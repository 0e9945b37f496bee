package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/mcp/transport/localtransport"
	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/effective-security/inkeep-mcp/tools/searchdocs"
	"github.com/spf13/cobra"
)

func newToolsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.newServer(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tools.GetDescriptions(s.Descriptors()...))
			return err
		},
	}
}

func newCallCmd(c *cli) *cobra.Command {
	var query string
	var params []string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call the tool in process and print the result",
		Example: `  inkeep-mcp call search-inkeep-docs --query "How do I create an agent?"
  inkeep-mcp call guidance-on-agents-sdk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newServer(cmd)
			if err != nil {
				return err
			}

			toolArgs := map[string]any{}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok || k == "" {
					return errors.Errorf("invalid argument, expected key=value: %s", p)
				}
				toolArgs[k] = v
			}
			if query != "" {
				toolArgs[searchdocs.ArgQuery] = query
			}

			client := localtransport.NewClient(localtransport.New(s.MCPServer()))
			res, err := client.CallTool(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), llmutils.JSONIndent(string(res)))
			return err
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "the search query")
	cmd.Flags().StringArrayVar(&params, "arg", nil, "tool argument as key=value, may be repeated")
	return cmd
}

func newConfigCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := c.cfg.Redacted()
			if asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), llmutils.ToJSONIndent(r))
				return err
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), llmutils.ToYAML(r))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
