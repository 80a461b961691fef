// Package compressor 实现可复现的 gzip 压缩 (Reproducible Compression)
//
// 标准 gzip 头里带修改时间和 OS 字节，同样的输入在不同机器/时间会压出
// 不同的字节——这会毁掉包构建的可复现性。所以这里手写 10 字节头，
// 把时间、OS 全部钉死为 0，deflate 用固定的默认压缩级别。
// 输出字节只是输入字节的纯函数。
package compressor

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// gzipHeader 是钉死的 10 字节头：
// magic 1f 8b + method 08 (deflate) + flags 00 + mtime 00000000 + xfl 00 + os 00
var gzipHeader = [10]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Compress 以可复现方式压缩 data
// 同样的输入永远得到 bit 级相同的输出，与机器和时钟无关
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(gzipHeader[:])

	// 裸 deflate 流 (不带 zlib 包装)，固定默认级别
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("init deflate: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate write: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("deflate flush: %w", err)
	}

	// 8 字节尾：CRC-32 + 原始长度 mod 2^32，都是小端
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	buf.Write(trailer[:])

	return buf.Bytes(), nil
}

// Decompress 解压 gzip 数据
// 注意：必须接受任意合规的 gzip 流，不只是自己压出来的
// (别人的发布端可能带文件名、真实时间戳等可选头字段)
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		// 头没问题但 deflate 流或 CRC 尾坏了
		return nil, fmt.Errorf("corrupt gzip stream: %w", err)
	}
	return out, nil
}
