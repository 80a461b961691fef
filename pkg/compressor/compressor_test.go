package compressor

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"hash/crc32"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_HeaderIsPinned(t *testing.T) {
	out, err := Compress([]byte("hello"))
	require.NoError(t, err)
	require.Greater(t, len(out), 18) // 10 头 + 8 尾

	// 头 10 字节逐一钉死：magic + deflate + 全零 mtime/flags/xfl/os
	expected := []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	assert.Equal(t, expected, out[:10])
}

func TestCompress_TrailerCRCAndSize(t *testing.T) {
	data := []byte("trailer check payload")
	out, err := Compress(data)
	require.NoError(t, err)

	trailer := out[len(out)-8:]
	assert.Equal(t, crc32.ChecksumIEEE(data), binary.LittleEndian.Uint32(trailer[0:4]))
	assert.Equal(t, uint32(len(data)), binary.LittleEndian.Uint32(trailer[4:8]))
}

func TestCompress_Deterministic(t *testing.T) {
	data := bytes.Repeat([]byte("reproducible build "), 1000)

	out1, err := Compress(data)
	require.NoError(t, err)

	// 中间隔一点时间再压，输出必须 bit 级一致
	time.Sleep(10 * time.Millisecond)
	out2, err := Compress(data)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
}

func TestCompress_RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("x"),
		bytes.Repeat([]byte{0x00, 0xff}, 4096),
		[]byte("中文内容也要能过"),
	}
	for _, data := range cases {
		out, err := Compress(data)
		require.NoError(t, err)
		back, err := Decompress(out)
		require.NoError(t, err)
		assert.Equal(t, []byte(data), append([]byte{}, back...))
	}
}

func TestDecompress_AcceptsForeignGzip(t *testing.T) {
	// 用标准库 gzip.Writer 压 (带 OS 字节、可能带时间)，我们必须能解
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = "foreign.txt"
	zw.ModTime = time.Now()
	_, err := zw.Write([]byte("foreign stream"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	back, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("foreign stream"), back)
}

func TestDecompress_Corrupt(t *testing.T) {
	// 1. 坏头
	_, err := Decompress([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)

	// 2. 头合法但流被截断/篡改
	out, err := Compress([]byte("will be damaged soon"))
	require.NoError(t, err)
	out[len(out)-2] ^= 0xff // 改 CRC 尾
	_, err = Decompress(out)
	assert.Error(t, err)
}
