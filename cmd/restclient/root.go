package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/restclient/codec"
	"github.com/kbukum/restclient/version"
)

// requestFlags holds the per-invocation request settings.
type requestFlags struct {
	configFile string
	method     string
	headers    []string
	query      []string
	params     []string
	data       string
	form       []string
	user       string
	bearer     string
	output     string
	include    bool
	fail       bool
	fallback   string
	timeout    time.Duration
	insecure   bool
	requestID  string
}

func newRootCmd() *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "restclient <url>",
		Short: "Send an HTTP request and print the response",
		Long: `restclient sends one HTTP request and prints the response body.

Relative URLs are resolved against client.base_url from restclient.yml or
RESTCLIENT_CLIENT__BASE_URL. Path placeholders such as {id} are bound with -p.

Examples:
  restclient https://httpbin.org/get -q page=2
  restclient -X POST /items -d '{"name":"x"}' -o yaml
  restclient /users/{id} -p id=42 -i
  restclient -X POST /upload -F name=report -F file=@report.pdf`,
		Version:       version.GetVersionInfo().Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "Config file (default: ./restclient.yml)")
	fl.StringVarP(&f.method, "request", "X", "", "HTTP method (default GET, or POST with a body)")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, `Header "Name: value", can be repeated`)
	fl.StringArrayVarP(&f.query, "query", "q", nil, "Query parameter key=value, can be repeated")
	fl.StringArrayVarP(&f.params, "param", "p", nil, "Route parameter key=value, can be repeated")
	fl.StringVarP(&f.data, "data", "d", "", "Request body, @file reads it from a file")
	fl.StringArrayVarP(&f.form, "form", "F", nil, "Form field key=value, key=@file attaches a file")
	fl.StringVarP(&f.user, "user", "u", "", "Basic auth credentials user:password")
	fl.StringVar(&f.bearer, "bearer", "", "Bearer token")
	fl.StringVarP(&f.output, "output", "o", "raw", "Output format (raw/json/yaml/toml)")
	fl.BoolVarP(&f.include, "include", "i", false, "Print the status line and response headers")
	fl.BoolVar(&f.fail, "fail", false, "Exit with an error on 4xx and 5xx responses")
	fl.StringVar(&f.fallback, "fallback", "", "Body served when the request cannot be completed, JSON for structured output")
	fl.DurationVar(&f.timeout, "timeout", 0, "Socket timeout, overrides client.socket_timeout")
	fl.BoolVarP(&f.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	fl.StringVar(&f.requestID, "request-id", "", "Request id (UUID) sent under client.request_id_header, X-Request-ID by default")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mapper, ok := codec.ForFormat(output)
			if !ok {
				return errUnknownFormat(output)
			}
			data, err := mapper.Write(version.GetVersionInfo())
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (json/yaml/toml)")
	return cmd
}
