package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ikit/internal/auth"
	"ikit/internal/config"
	"ikit/internal/transform"
	"ikit/internal/urlbuild"
)

// urlFlags are shared by the url and srcset commands.
type urlFlags struct {
	endpoint       string
	transformation string
	presets        []string
	position       string
	query          []string
}

func (f *urlFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "URL endpoint (defaults to imagekit.url_endpoint)")
	cmd.Flags().StringVar(&f.transformation, "tr", "", `Transformation as JSON, e.g. '[{"width":300},{"rotation":90}]'`)
	cmd.Flags().StringArrayVar(&f.presets, "preset", nil, "Named transformation preset from the config (repeatable)")
	cmd.Flags().StringVar(&f.position, "position", "", "Transformation placement: query or path (defaults to config)")
	cmd.Flags().StringArrayVarP(&f.query, "query", "q", nil, "Extra query parameter as key=value (repeatable)")
}

// srcOptions resolves flags against the configuration.
func (f *urlFlags) srcOptions(cfg *config.Config, src string) (urlbuild.SrcOptions, error) {
	opts := urlbuild.SrcOptions{Src: src}

	opts.URLEndpoint = strings.TrimSpace(f.endpoint)
	if opts.URLEndpoint == "" {
		opts.URLEndpoint = cfg.ImageKit.URLEndpoint
	}
	if opts.URLEndpoint == "" && !isAbsoluteURL(src) {
		if err := cfg.RequireURLEndpoint(); err != nil {
			return opts, err
		}
	}

	position := f.position
	if strings.TrimSpace(position) == "" {
		position = cfg.ImageKit.TransformationPosition
	} else if !validPosition(position) {
		return opts, fmt.Errorf("invalid --position %q (expected query or path)", position)
	}
	opts.TransformationPosition = urlbuild.ParsePosition(position)

	if strings.TrimSpace(f.transformation) != "" {
		tr, err := transform.ParseJSON([]byte(f.transformation))
		if err != nil {
			return opts, fmt.Errorf("parse --tr: %w", err)
		}
		opts.Transformation = tr
	}
	for _, name := range f.presets {
		raw, ok := cfg.Preset(name)
		if !ok {
			return opts, fmt.Errorf("unknown preset %q", name)
		}
		opts.Transformation = append(opts.Transformation, transform.Step{{Key: "raw", Value: raw}})
	}

	for _, pair := range f.query {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return opts, fmt.Errorf("invalid --query %q (expected key=value)", pair)
		}
		opts.QueryParameters = append(opts.QueryParameters, urlbuild.QueryParam{Key: key, Value: value})
	}
	return opts, nil
}

func newURLCommand(ctx *commandContext) *cobra.Command {
	var flags urlFlags
	var sign bool
	var expire int64

	cmd := &cobra.Command{
		Use:   "url <src>",
		Short: "Build a delivery URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts, err := flags.srcOptions(cfg, args[0])
			if err != nil {
				return err
			}

			built := urlbuild.NewBuilder(urlbuild.WithLogger(logger)).Build(opts)
			if built == "" {
				return fmt.Errorf("could not build a url for %q with endpoint %q", opts.Src, opts.URLEndpoint)
			}

			if sign || expire > 0 {
				if expire < 0 {
					return errors.New("--expire must not be negative")
				}
				built, err = auth.SignURL(built, opts.URLEndpoint, cfg.ImageKit.PrivateKey, expire, time.Now())
				if err != nil {
					return fmt.Errorf("sign url: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), built)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&sign, "sign", false, "Append a delivery signature using imagekit.private_key")
	cmd.Flags().Int64Var(&expire, "expire", 0, "Signature lifetime in seconds (implies --sign; 0 never expires)")
	return cmd
}

func newSrcsetCommand(ctx *commandContext) *cobra.Command {
	var flags urlFlags
	var width int
	var sizes string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "srcset <src>",
		Short: "Build responsive <img> attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if width < 0 {
				return errors.New("--width must not be negative")
			}
			opts, err := flags.srcOptions(cfg, args[0])
			if err != nil {
				return err
			}

			attrs := urlbuild.NewBuilder(urlbuild.WithLogger(logger)).ResponsiveAttributes(urlbuild.ResponsiveOptions{
				SrcOptions: opts,
				Width:      width,
				Sizes:      sizes,
			})
			if attrs.Src == "" {
				return fmt.Errorf("could not build a url for %q with endpoint %q", opts.Src, opts.URLEndpoint)
			}

			if asJSON {
				return writeJSON(cmd, attrs)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "src:    %s\n", attrs.Src)
			if attrs.SrcSet != "" {
				fmt.Fprintf(out, "srcset: %s\n", attrs.SrcSet)
			}
			if attrs.Sizes != "" {
				fmt.Fprintf(out, "sizes:  %s\n", attrs.Sizes)
			}
			if attrs.Width > 0 {
				fmt.Fprintf(out, "width:  %d\n", attrs.Width)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "Intended display width in CSS pixels")
	cmd.Flags().StringVar(&sizes, "sizes", "", "HTML sizes attribute, e.g. '(max-width: 600px) 100vw, 50vw'")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func isAbsoluteURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func validPosition(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(urlbuild.PositionQuery), string(urlbuild.PositionPath):
		return true
	}
	return false
}
