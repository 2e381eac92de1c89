package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/corvuschain/corvus-sim-go/chain"
	"github.com/corvuschain/corvus-sim-go/config"
	"github.com/corvuschain/corvus-sim-go/facade"
	"github.com/corvuschain/corvus-sim-go/iservices"
	"github.com/corvuschain/corvus-sim-go/mylog"
	"github.com/corvuschain/corvus-sim-go/node"
	"github.com/corvuschain/corvus-sim-go/storage"
)

func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the simulator node",
		Run:   startNode,
	}
	cmd.Flags().StringVarP(&cfgName, "name", "n", "", "node name (default is corvussim)")
	return cmd
}

func makeNode() (*node.Node, node.Config) {
	var cfg node.Config
	cfg.Name = ClientIdentifier
	if cfgName != "" {
		cfg.Name = cfgName
	}
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	confdir := filepath.Join(config.DefaultDataDir(), cfg.Name)
	viper.AddConfigPath(confdir)
	if err := viper.ReadInConfig(); err == nil {
		_ = viper.Unmarshal(&cfg)
	} else {
		fmt.Printf("fatal: not be initialized (do `init` first)\n")
		os.Exit(1)
	}
	if cfg.DataDir != "" {
		dir, err := filepath.Abs(cfg.DataDir)
		if err != nil {
			fmt.Println("Fatal: DataDir cannot be converted to an absolute path")
			os.Exit(1)
		}
		cfg.DataDir = dir
	}
	app, err := node.New(&cfg)
	if err != nil {
		fmt.Println("Fatal: ", err)
		os.Exit(1)
	}
	return app, cfg
}

func startNode(cmd *cobra.Command, args []string) {
	_, _ = cmd, args
	app, cfg := makeNode()

	log := mylog.Init(cfg.ResolvePath(cfg.Logs.Dir), cfg.Logs.Level, cfg.Logs.LifeSpanInSeconds)
	app.Log = log

	_ = app.Register(iservices.DbServerName, func(ctx *node.ServiceContext) (node.Service, error) {
		return storage.New(ctx)
	})
	_ = app.Register(iservices.ChainServerName, func(ctx *node.ServiceContext) (node.Service, error) {
		return chain.NewController(ctx)
	})
	_ = app.Register(facade.WebServerName, func(ctx *node.ServiceContext) (node.Service, error) {
		return facade.NewWebServer(ctx)
	})

	if err := app.Start(); err != nil {
		fmt.Printf("start node failed, err: %v\n", err)
		os.Exit(1)
	}

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go func() {
			_ = app.Stop()
		}()
	}()

	app.Wait()
}
