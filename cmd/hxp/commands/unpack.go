// cmd/hxp/commands/unpack.go

package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hexpack/pkg/tarball"
)

var unpackList bool

var unpackCmd = &cobra.Command{
	Use:   "unpack <tarball> [dest]",
	Short: "Validate a package tarball and extract its contents",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if HXP == nil {
			return fmt.Errorf("app not initialized")
		}
		source := args[0]

		// --list: 只校验 + 列内容，不碰文件系统
		if unpackList {
			return listContents(source)
		}

		// 目标目录：参数 > 配置 > 按 tarball 文件名推
		dest := ""
		if len(args) == 2 {
			dest = args[1]
		} else if HXP.UnpackDest != "" {
			dest = HXP.UnpackDest
		} else {
			dest = strings.TrimSuffix(filepath.Base(source), ".tar")
		}

		meta, cs, err := tarball.UnpackFile(source, dest)
		if err != nil {
			return err
		}

		fmt.Printf("✅ unpacked to %s\n   checksum: %s\n", dest, cs)
		printMetaSummary(meta)
		return nil
	},
}

func listContents(source string) error {
	_, cs, files, err := tarball.UnpackFileInMemory(source)
	if err != nil {
		return err
	}
	fmt.Printf("checksum: %s\n", cs)
	for _, f := range files {
		if f.Link != "" {
			fmt.Printf("  %s -> %s\n", f.Name, f.Link)
			continue
		}
		fmt.Printf("  %s (%d bytes)\n", f.Name, len(f.Data))
	}
	return nil
}

func init() {
	unpackCmd.Flags().BoolVar(&unpackList, "list", false, "List contents without extracting")
	rootCmd.AddCommand(unpackCmd)
}
