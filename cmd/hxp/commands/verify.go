// cmd/hxp/commands/verify.go

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hexpack/pkg/tarball"
	"hexpack/pkg/term"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <tarball>",
	Short: "Validate a package tarball without extracting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, cs, _, err := tarball.UnpackFileInMemory(args[0])
		if err != nil {
			// 错误本身就是诊断信息 (校验和不匹配时带着两个摘要)
			return fmt.Errorf("verification failed: %w", err)
		}

		fmt.Printf("✅ %s\n   checksum: %s\n", args[0], cs)
		printMetaSummary(meta)
		return nil
	},
}

// printMetaSummary 打常用元数据字段，没有就跳过
func printMetaSummary(meta *term.Map) {
	for _, key := range []string{"name", "app", "version", "description"} {
		if v, ok := meta.Get(key); ok && v.Text() != "" {
			fmt.Printf("   %s: %s\n", key, v.Text())
		}
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
