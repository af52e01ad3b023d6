package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/espclient/internal/config"
	"github.com/danmuck/espclient/internal/logging"
	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/rs/zerolog"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	ConfigPath string `cli:"name=config desc='TOML config file'"`
	Name       string `cli:"name=name aliases=n desc='client name sent to the server after connecting'"`
	Debug      bool   `cli:"name=debug desc='log raw inbound and outbound lines'"`
	Color      string `cli:"name=color desc='console color: auto, always, never'"`
	Transcript string `cli:"name=transcript desc='append traffic as JSON lines to this file'"`
	Status     string `cli:"name=status desc='serve /health, /metrics and /stream on this address'"`
	MaxBuffer  int    `cli:"name=maxbuf desc='maximum bytes kept per inbound line'"`
	History    string `cli:"name=history desc='line editor history file'"`
	Mute       string `cli:"name=mute desc='hide lines on these streams (comma separated names)'"`

	Main *cli.Command
}

type ConfigCmdConfig struct {
	*MainConfig

	Cmd *cli.Command
}

type InitConfig struct {
	*MainConfig

	Force  bool   `cli:"name=force desc='overwrite an existing file'"`
	Server string `cli:"name=server desc='server address written into the file'"`

	Init *cli.Command
}

type ShowConfig struct {
	*MainConfig

	Show *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "espclient").
		WithSynopsis("espclient [opts] host:port | espclient [opts] config <init|show>").
		WithDescription("espclient is an interactive line client for an ESP server.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return espMain(cfg, cc, args)
		}).
		WithSubs(ConfigCommand(cfg))
}

func ConfigCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConfigCmdConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Cmd, "config").
		WithSynopsis("config <init|show>").
		WithDescription("write or inspect the client configuration").
		WithRun(func(cc *cli.Context, args []string) error {
			return dispatch(cfg.Cmd, cc, args)
		}).
		WithSubs(
			InitCommand(mainCfg),
			ShowCommand(mainCfg))
}

func InitCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &InitConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Init, "init").
		WithSynopsis("init [-force] [-server host:port] [path]").
		WithDescription("write a default config file (espclient.toml)").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return configInit(cfg, cc, args)
		})
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Show, "show").
		WithSynopsis("show [host:port]").
		WithDescription("print the effective configuration").
		WithRun(func(cc *cli.Context, args []string) error {
			return configShow(cfg, cc, args)
		})
}

func espMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if sub := cfg.Main.FindSub(cc, args[0]); sub != nil {
			return sub.Run(cc, args[1:])
		}
	}

	clientCfg, err := cfg.resolve(args)
	if err != nil {
		return err
	}
	if clientCfg.Server == "" {
		return fmt.Errorf("%w: missing server host:port", cli.ErrUsage)
	}

	logging.ConfigureRuntime()
	if clientCfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runClient(ctx, clientCfg, os.Stdin, os.Stdout)
}

func dispatch(cmd *cli.Command, cc *cli.Context, args []string) error {
	args, err := cmd.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cmd.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	return sub.Run(cc, args[1:])
}

func configInit(cfg *InitConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Init.Parse(cc, args)
	if err != nil {
		return err
	}
	path := "espclient.toml"
	switch len(args) {
	case 0:
	case 1:
		path = args[0]
	default:
		return fmt.Errorf("%w: init takes at most one path", cli.ErrUsage)
	}
	if err := config.WriteTemplate(path, strings.TrimSpace(cfg.Server), cfg.Force); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "wrote %s\n", path)
	return nil
}

func configShow(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Show.Parse(cc, args)
	if err != nil {
		return err
	}
	clientCfg, err := cfg.MainConfig.resolve(args)
	if err != nil {
		return err
	}
	out, err := config.Render(clientCfg)
	if err != nil {
		return err
	}
	_, err = cc.Out.Write(out)
	return err
}

// resolve layers the config file, the positional server address and the
// command line options, in that order.
func (cfg *MainConfig) resolve(args []string) (config.ClientConfig, error) {
	out := config.DefaultClientConfig()
	if path := strings.TrimSpace(cfg.ConfigPath); path != "" {
		loaded, err := config.LoadClientConfig(path)
		if err != nil {
			return config.ClientConfig{}, err
		}
		out = loaded
	}

	switch len(args) {
	case 0:
	case 1:
		out.Server = strings.TrimSpace(args[0])
	default:
		return config.ClientConfig{}, fmt.Errorf("%w: expected one host:port, got %d arguments", cli.ErrUsage, len(args))
	}

	if v := strings.TrimSpace(cfg.Name); v != "" {
		out.Name = v
	}
	if cfg.Debug {
		out.Debug = true
	}
	if v := strings.TrimSpace(cfg.Color); v != "" {
		out.Color = config.ColorMode(strings.ToLower(v))
	}
	if v := strings.TrimSpace(cfg.Transcript); v != "" {
		out.Transcript = v
	}
	if v := strings.TrimSpace(cfg.Status); v != "" {
		out.StatusAddr = v
	}
	if cfg.MaxBuffer != 0 {
		out.MaxBufferLength = cfg.MaxBuffer
	}
	if v := strings.TrimSpace(cfg.History); v != "" {
		out.HistoryFile = v
	}
	if v := strings.TrimSpace(cfg.Mute); v != "" {
		set, err := esp.ParseStreamSet(strings.Split(v, ","))
		if err != nil {
			return config.ClientConfig{}, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		out.Mute = set
	}

	if err := config.ValidateClientConfig(out); err != nil {
		return config.ClientConfig{}, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return out, nil
}
