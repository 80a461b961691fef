package checksum

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_IsConcatThenHash(t *testing.T) {
	version := "3"
	metadata := "{\"name\", \"ecto\"}.\n"
	contents := []byte{0x1f, 0x8b, 0x08, 0x00}

	got := Compute(version, metadata, contents)

	// 对照：手工拼接后整体做一次 SHA-256，必须逐字节相同
	concat := append([]byte(version+metadata), contents...)
	want := sha256.Sum256(concat)
	assert.Equal(t, want[:], got[:])
}

func TestCompute_BindsAllThreeInputs(t *testing.T) {
	base := Compute("3", "meta", []byte("contents"))

	// 任何一段变一个字节，摘要必须变
	assert.NotEqual(t, base, Compute("4", "meta", []byte("contents")))
	assert.NotEqual(t, base, Compute("3", "metA", []byte("contents")))
	assert.NotEqual(t, base, Compute("3", "meta", []byte("Contents")))

	// 顺序也是协议的一部分：段间没有分隔符，但顺序固定
	assert.NotEqual(t, base, Compute("meta", "3", []byte("contents")))
}

func TestCompute_Deterministic(t *testing.T) {
	a := Compute("3", "same", []byte("same"))
	b := Compute("3", "same", []byte("same"))
	assert.Equal(t, a, b)
}
