// Package tarball 实现包分发用的 tarball 容器格式 (Tarball Pipeline)
//
// 外层是一个不压缩的 tar，恰好四个条目：
//
//	VERSION           格式版本，当前必须是 "3"
//	CHECKSUM          大写 Base16 的 SHA-256
//	metadata.config   受限字面量文本 (pkg/term)
//	contents.tar.gz   内层归档：可复现 gzip 压缩的 tar (pkg/compressor)
//
// 发布端和安装端必须对格式逐字节达成一致，因为校验和算在原始字节上。
package tarball

import (
	"time"
)

const (
	// Version 当前格式版本
	Version = "3"

	// MaxSize 外层 tarball 的体积上限
	MaxSize = 8 * 1024 * 1024

	// 外层的四个条目名 (协议常量)
	fileVersion  = "VERSION"
	fileChecksum = "CHECKSUM"
	fileMetadata = "metadata.config"
	fileContents = "contents.tar.gz"

	// metadataSideFile 解包到磁盘时额外落的一份原始元数据文本，
	// 外部工具可以直接读它，不用自己再解码一遍
	metadataSideFile = "hex_metadata.config"
)

// supportedVersions 是 unpack 接受的版本集合
var supportedVersions = map[string]bool{"3": true}

// requiredFiles 按协议顺序排列 (create 也按这个顺序写条目)
var requiredFiles = []string{fileVersion, fileChecksum, fileMetadata, fileContents}

// epoch 是可复现构建用的固定时间戳：2000-01-01T00:00:00Z
// tar 条目全部钉在这个时间上，uid/gid 钉 0
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// File 是内层归档的一个条目
//
// 三种来源：显式字节 (Data)，磁盘路径 (Source, Data 为 nil 时读它)，
// 或符号链接 (Link 非空)。目录结构由文件路径隐式还原，不需要显式目录条目。
type File struct {
	Name   string // 归档内的相对路径 (斜杠分隔)
	Data   []byte // 文件内容；nil 且 Source 非空时从磁盘读
	Source string // 磁盘来源路径 (可选)
	Mode   int64  // 文件权限；0 表示默认 0644
	Link   string // 符号链接目标；非空时这是个 symlink 条目
}
