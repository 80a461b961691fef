package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hexpack/pkg/app"
	"hexpack/pkg/config"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	HXP *app.App
)

var rootCmd = &cobra.Command{
	Use:   "hxp",
	Short: "hexpack: build and unpack package tarballs",
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		HXP, err = app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize hexpack: %w", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hxp/config.yaml)")

	// 2. 定义 output.dir 参数，并绑定到 Viper
	// 用户既可以在 yaml 里写，也可以用 --output-dir 覆盖
	rootCmd.PersistentFlags().String("output-dir", "", "Directory to write created tarballs")
	if err := viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("output-dir")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
