package tarball

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"hexpack/pkg/checksum"
	"hexpack/pkg/compressor"
	"hexpack/pkg/term"
	"hexpack/pkg/types"
)

// Create 组装外层 tarball，返回 (tarball 字节, 校验和)
//
// 确定性保证：同样的 meta (同插入顺序) 和同样的 files (同顺序、同内容)
// 在任何机器任何时间都产出逐字节相同的 tarball。
func Create(meta *term.Map, files []File) ([]byte, types.Checksum, error) {
	var zero types.Checksum

	// 1. 打内层归档：tar + 可复现 gzip
	inner, err := packInnerFiles(files)
	if err != nil {
		return nil, zero, &InnerError{Err: err}
	}
	contents, err := compressor.Compress(inner)
	if err != nil {
		return nil, zero, &InnerError{Err: err}
	}

	// 2. 编码元数据
	metaText, err := term.EncodeMetadata(meta)
	if err != nil {
		return nil, zero, err
	}

	// 3. 校验和绑定 (version, metadata, contents)
	cs := checksum.Compute(Version, metaText, contents)

	// 4. 打外层 tar (不压缩)，四个条目按协议顺序
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	outer := map[string][]byte{
		fileVersion:  []byte(Version),
		fileChecksum: []byte(cs.String()),
		fileMetadata: []byte(metaText),
		fileContents: contents,
	}
	for _, name := range requiredFiles {
		if err := writeEntry(tw, name, outer[name], 0o644); err != nil {
			return nil, zero, &OuterError{Err: err}
		}
	}
	if err := tw.Close(); err != nil {
		return nil, zero, &OuterError{Err: err}
	}

	// 5. 体积上限检查 (返回之前就要拦住)
	if buf.Len() > MaxSize {
		return nil, zero, ErrTooBig
	}
	return buf.Bytes(), cs, nil
}

// CreateFile 组装 tarball 并落盘到 out，父目录按需创建
func CreateFile(meta *term.Map, files []File, out string) ([]byte, types.Checksum, error) {
	data, cs, err := Create(meta, files)
	if err != nil {
		return nil, cs, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, cs, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return nil, cs, fmt.Errorf("write tarball: %w", err)
	}
	return data, cs, nil
}
