// cmd/hxp/commands/create.go

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"hexpack/pkg/filelist"
	"hexpack/pkg/tarball"
	"hexpack/pkg/term"
)

var createCmd = &cobra.Command{
	Use:   "create [dir...]",
	Short: "Build a package tarball from each directory",
	Long: `Build a signed-checksum package tarball from each package directory.
Each directory must contain a metadata.config file; the file list is
collected from the directory (honoring ` + filelist.IgnoreFile + `).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if HXP == nil {
			return fmt.Errorf("app not initialized")
		}
		dirs := args
		if len(dirs) == 0 {
			dirs = []string{"."}
		}

		start := time.Now()

		// 包与包之间零共享状态，按配置的并发度批量打
		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(HXP.Jobs)
		for _, dir := range dirs {
			g.Go(func() error {
				out, cs, err := createOne(dir)
				if err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
				fmt.Printf("📦 %s\n   checksum: %s\n", out, cs)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Done in %v (%d package(s))\n", time.Since(start).Round(time.Millisecond), len(dirs))
		return nil
	},
}

// createOne 打一个包：读元数据、收文件、组装、落盘
func createOne(dir string) (string, string, error) {
	// 1. 读元数据 (必须有 metadata.config)
	metaPath := filepath.Join(dir, "metadata.config")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return "", "", fmt.Errorf("read metadata.config: %w", err)
	}
	meta, err := term.DecodeMetadata(string(raw))
	if err != nil {
		return "", "", fmt.Errorf("decode metadata.config: %w", err)
	}

	// 2. 收集文件列表
	files, err := filelist.Collect(dir)
	if err != nil {
		return "", "", err
	}
	// 元数据自己不进内层归档 (它在外层单独有条目)
	files = dropByName(files, "metadata.config")

	// 3. files 字段缺失时补上收集结果 (安装端靠它做 build_tools 推断)
	if !meta.Has("files") {
		var names []term.Value
		for _, f := range files {
			names = append(names, term.Str(f.Name))
		}
		meta.Set("files", term.List(names...))
	}

	// 4. 组装并落盘
	out := filepath.Join(viper.GetString("output.dir"), outputName(meta, dir))
	_, cs, err := tarball.CreateFile(meta, files, out)
	if err != nil {
		return "", "", err
	}
	return out, cs.String(), nil
}

// outputName 从元数据推产出文件名：<name>-<version>.tar
// 元数据里拿不到就退回目录名
func outputName(meta *term.Map, dir string) string {
	name := textField(meta, "name")
	if name == "" {
		name = textField(meta, "app")
	}
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err == nil {
			name = filepath.Base(abs)
		} else {
			name = "package"
		}
	}
	if version := textField(meta, "version"); version != "" {
		return name + "-" + version + ".tar"
	}
	return name + ".tar"
}

func textField(meta *term.Map, key string) string {
	v, ok := meta.Get(key)
	if !ok {
		return ""
	}
	return v.Text()
}

func dropByName(files []tarball.File, name string) []tarball.File {
	out := files[:0]
	for _, f := range files {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func init() {
	createCmd.Flags().Int("jobs", 0, "Max packages built in parallel (default: CPU count)")
	if err := viper.BindPFlag("create.jobs", createCmd.Flags().Lookup("jobs")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
	rootCmd.AddCommand(createCmd)
}
