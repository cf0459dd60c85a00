package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bodgit/rq"
	"github.com/bodgit/rq/config"
	"github.com/bodgit/rq/mask"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("db") {
		cfg.DB = c.String("db")
	}
	return cfg, nil
}

func newConverter(c *cli.Context, cfg *config.Config) (*rq.Converter, func(), error) {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	var catalog *rq.Catalog
	if cfg.DB != "" {
		var err error
		if catalog, err = rq.NewCatalog(cfg.DB); err != nil {
			return nil, nil, err
		}
	}

	closer := func() {
		if catalog != nil {
			catalog.Close()
		}
	}

	return rq.New(catalog, logger, rq.WithWorkers(cfg.Workers)), closer, nil
}

func encodeOptions(c *cli.Context, cfg *config.Config) (rq.EncodeOptions, error) {
	spec := cfg.Mask
	if c.IsSet("mask") {
		spec = c.String("mask")
	}
	m, err := mask.Parse(spec)
	if err != nil {
		return rq.EncodeOptions{}, err
	}

	o := rq.EncodeOptions{
		Mask:      m,
		MaxWidth:  cfg.MaxWidth,
		MaxHeight: cfg.MaxHeight,
	}
	if c.IsSet("max-width") {
		o.MaxWidth = c.Int("max-width")
	}
	if c.IsSet("max-height") {
		o.MaxHeight = c.Int("max-height")
	}
	return o, nil
}

func encodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mask",
			Aliases: []string{"m"},
			Value:   mask.DefaultString,
			Usage:   "bits kept for the red, green and blue channels",
		},
		&cli.IntFlag{
			Name:  "max-width",
			Usage: "shrink wider images to this width",
		},
		&cli.IntFlag{
			Name:  "max-height",
			Usage: "shrink taller images to this height",
		},
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "rq"
	app.Usage = "RQ packed pixel image converter"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"RQ_CONFIG"},
			Usage:   "path to YAML configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"RQ_DB"},
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "encode",
			Usage: "Encode an image into the RQ format",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     "input",
					Aliases:  []string{"i"},
					Usage:    "the input file to read",
					Required: true,
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "output." + rq.Extension,
					Usage:   "the output file to write",
				},
			}, encodeFlags()...),
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return exit(err)
				}

				o, err := encodeOptions(c, cfg)
				if err != nil {
					return exit(err)
				}

				r, closer, err := newConverter(c, cfg)
				if err != nil {
					return exit(err)
				}
				defer closer()

				if err := r.EncodeFile(c.String("input"), c.String("output"), o); err != nil {
					return exit(err)
				}

				return nil
			},
		},
		{
			Name:  "decode",
			Usage: "Decode an image from the RQ format",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "input",
					Aliases: []string{"i"},
					Value:   "output." + rq.Extension,
					Usage:   "the input file to read",
				},
				&cli.StringFlag{
					Name:     "output",
					Aliases:  []string{"o"},
					Usage:    "the output file to write",
					Required: true,
				},
				&cli.BoolFlag{
					Name:    "augment",
					Aliases: []string{"a"},
					Usage:   "use the fixed 5/6/5 reconstruction",
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return exit(err)
				}

				augment := cfg.Augment
				if c.IsSet("augment") {
					augment = c.Bool("augment")
				}

				r, closer, err := newConverter(c, cfg)
				if err != nil {
					return exit(err)
				}
				defer closer()

				if err := r.DecodeFile(c.String("input"), c.String("output"), augment); err != nil {
					return exit(err)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Show the header of an RQ file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				info, err := rq.New(nil, nil).Inspect(c.Args().First())
				if err != nil {
					return exit(err)
				}

				fmt.Fprintf(c.App.Writer, "mask:   %s\n", info.Mask)
				fmt.Fprintf(c.App.Writer, "width:  %d\n", info.Width)
				fmt.Fprintf(c.App.Writer, "height: %d\n", info.Height)
				fmt.Fprintf(c.App.Writer, "size:   %d bytes (expected %d)\n", info.Size, info.Expected)

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Encode every image found under a directory",
			ArgsUsage: "DIRECTORY",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of concurrent encoders",
				},
			}, encodeFlags()...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return exit(err)
				}
				if c.IsSet("workers") {
					cfg.Workers = c.Int("workers")
				}

				o, err := encodeOptions(c, cfg)
				if err != nil {
					return exit(err)
				}

				r, closer, err := newConverter(c, cfg)
				if err != nil {
					return exit(err)
				}
				defer closer()

				if err := r.Scan(c.Args().First(), o); err != nil {
					return exit(err)
				}

				return nil
			},
		},
		{
			Name:  "catalog",
			Usage: "List the images held in the catalog database",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return exit(err)
				}
				if cfg.DB == "" {
					return cli.Exit("no catalog database configured, use --db", 1)
				}

				catalog, err := rq.NewCatalog(cfg.DB)
				if err != nil {
					return exit(err)
				}
				defer catalog.Close()

				entries, err := catalog.List()
				if err != nil {
					return exit(err)
				}

				for _, e := range entries {
					fmt.Fprintf(c.App.Writer, "%s\t%s\t%dx%d\t%d\t%d\t%s\n", e.SHA1, e.Mask, e.Width, e.Height, e.Size, e.Stored, e.Name)
				}

				return nil
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
