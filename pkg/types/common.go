// pkg/types/common.go
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Checksum 是外层 tarball 的完整性校验值 (SHA-256, 固定 32 字节)
// 这是一个“值对象”，应当是不可变的。
type Checksum [32]byte

// ChecksumSize 是校验和的字节长度 (协议常量，不可更改)
const ChecksumSize = 32

// String 返回规范编码：大写 Base16
// 写入 CHECKSUM 条目时必须用这个形式
func (c Checksum) String() string {
	return strings.ToUpper(hex.EncodeToString(c[:]))
}

// IsZero 判断是否为零值 (尚未计算)
func (c Checksum) IsZero() bool { return c == Checksum{} }

// ParseChecksum 解析 Base16 文本为 Checksum
// 注意：解码是宽容的，大小写混合都接受；只有长度和字符集是硬约束
func ParseChecksum(text string) (Checksum, error) {
	var c Checksum
	raw, err := hex.DecodeString(text)
	if err != nil {
		return c, fmt.Errorf("invalid base16: %w", err)
	}
	if len(raw) != ChecksumSize {
		return c, fmt.Errorf("checksum must be %d bytes, got %d", ChecksumSize, len(raw))
	}
	copy(c[:], raw)
	return c, nil
}
