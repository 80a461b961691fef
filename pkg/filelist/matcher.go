// Package filelist 把一个包目录变成待打包的文件列表
//
// 核心管线只消费文件列表 (路径 + 字节/来源)，目录遍历属于边界上的
// 生产端职责，由这个包承担。忽略规则走 gitignore 语法。
package filelist

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile 是用户自定义忽略规则的文件名 (放在包根目录)
const IgnoreFile = ".hxpignore"

// Matcher 封装了忽略逻辑
// 它负责判断一个文件是否应该被排除在包之外
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 包根目录 (用于查找 .hxpignore 文件)
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 系统级默认规则 (Hardcoded Defaults)
	// 这些强制生效，防止把垃圾或敏感文件打进发布包
	defaultRules := []string{
		// --- 版本控制与构建产物 ---
		".git",
		"_build",
		"deps",
		"*.tar",

		// --- 安全与配置 ---
		IgnoreFile,
		".env", // 防止密钥泄露进发布包

		// --- 常见垃圾文件 ---
		".DS_Store", // macOS
		"Thumbs.db", // Windows
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 用户有 .hxpignore 的话，和默认规则合并编译
	ignoreFilePath := filepath.Join(rootPath, IgnoreFile)
	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}
	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定路径是否命中忽略规则
// path: 相对于包根目录的相对路径 (例如 "lib/app.ex")
// 返回 true 表示排除，false 表示保留
func (m *Matcher) Matches(path string) bool {
	if m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
