package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		// 用户指定了文件，直接使用
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：
		// 1. 当前目录
		viper.AddConfigPath(".")
		// 2. 当前目录下的 .hxp
		viper.AddConfigPath(".hxp")
		// 3. 用户主目录下的 .hxp
		viper.AddConfigPath(filepath.Join(home, ".hxp"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (HXP_OUTPUT_DIR 等)
	viper.SetEnvPrefix("HXP")
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错 (默认值 + 环境变量足够跑)
		// 配置文件存在但格式坏了才是错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// 产出目录：create 出来的 tarball 放哪
	wd, _ := os.Getwd()
	viper.SetDefault("output.dir", wd)

	// 解包目标目录：空表示用 tarball 文件名推
	viper.SetDefault("unpack.dest", "")

	// 批量打包的并发度
	viper.SetDefault("create.jobs", runtime.NumCPU())
}
