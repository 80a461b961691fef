// Package checksum 实现校验和协议 (Checksum Protocol)
//
// 把格式版本、元数据文本、内层归档三者绑进同一个 SHA-256 摘要。
// 动其中任何一个字节，摘要必变——这是 tarball 完整性的唯一锚点。
package checksum

import (
	"crypto/sha256"

	"hexpack/pkg/types"
)

// Compute 计算摘要：SHA-256(version ‖ metadata ‖ contents)
// 三段按这个顺序直接拼接，中间没有分隔符 (协议规定，生产端消费端必须逐字节一致)
func Compute(version string, metadata string, contents []byte) types.Checksum {
	h := sha256.New()
	h.Write([]byte(version))
	h.Write([]byte(metadata))
	h.Write(contents)

	var c types.Checksum
	copy(c[:], h.Sum(nil))
	return c
}
