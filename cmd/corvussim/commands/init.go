package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corvuschain/corvus-sim-go/config"
)

const ClientIdentifier = "corvussim"

var cfgName string

func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration files",
		Run:   initConf,
	}
	cmd.Flags().StringVarP(&cfgName, "name", "n", "", "node name (default is corvussim)")
	return cmd
}

func initConf(cmd *cobra.Command, args []string) {
	_, _ = cmd, args
	cfg := config.DefaultNodeConfig
	if cfgName != "" {
		cfg.Name = cfgName
	}
	confdir := filepath.Join(cfg.DataDir, cfg.Name)
	if _, err := os.Stat(confdir); os.IsNotExist(err) {
		if err = os.MkdirAll(confdir, 0700); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	if err := config.WriteNodeConfigFile(confdir, config.ConfigFileName, cfg, 0600); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("configuration written to %s\n", filepath.Join(confdir, config.ConfigFileName))
}
