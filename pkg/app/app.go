// pkg/app/app.go
package app

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// App 是 CLI 的依赖容器 (Dependency Container)
// 管线本身是纯函数，这里只装配置派生出来的运行参数
type App struct {
	// OutputDir 是 create 产出 tarball 的目录
	OutputDir string

	// UnpackDest 是 unpack 的默认目标目录 (空 = 按 tarball 文件名推)
	UnpackDest string

	// Jobs 是批量 create 的并发度
	Jobs int
}

// NewApp 是工厂函数，从 Viper 配置组装 App
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp() (*App, error) {
	outDir := viper.GetString("output.dir")
	if outDir == "" {
		return nil, fmt.Errorf("output dir not set")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	jobs := viper.GetInt("create.jobs")
	if jobs < 1 {
		jobs = 1
	}

	return &App{
		OutputDir:  outDir,
		UnpackDest: viper.GetString("unpack.dest"),
		Jobs:       jobs,
	}, nil
}
