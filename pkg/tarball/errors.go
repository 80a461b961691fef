package tarball

import (
	"errors"
	"fmt"
	"strings"

	"hexpack/pkg/types"
)

// 错误分类 (Error Taxonomy)
// 所有失败都是值，不是 panic；unpack 链条一旦出错就原样穿透到底，
// 后面的阶段绝不覆盖前面的错误。每种错误的消息是确定性的。

var (
	// ErrTooBig 输入超过 8 MiB 上限 (create 产出后和 unpack 解包前都查)
	ErrTooBig = errors.New("tarball exceeds maximum size of 8 MiB")

	// ErrEmpty 外层归档一个条目都没有
	ErrEmpty = errors.New("empty tarball")

	// ErrInvalidChecksum CHECKSUM 条目不是合法的 Base16
	ErrInvalidChecksum = errors.New("invalid checksum encoding")
)

// MissingFilesError 外层条目缺了必需的名字
type MissingFilesError struct {
	Names []string
}

func (e *MissingFilesError) Error() string {
	return "missing files: " + strings.Join(e.Names, ", ")
}

// InvalidFilesError 外层条目出现了不认识的名字
// 注意：未知名检查优先于缺失名检查 (两者同时发生时只报这个)
type InvalidFilesError struct {
	Names []string
}

func (e *InvalidFilesError) Error() string {
	return "invalid files: " + strings.Join(e.Names, ", ")
}

// BadVersionError VERSION 条目不在支持集合里
type BadVersionError struct {
	Value string
}

func (e *BadVersionError) Error() string {
	return fmt.Sprintf("unsupported version: %q", e.Value)
}

// ChecksumMismatchError 存储的校验和与重算结果不一致
// 两个摘要都带上，给调用方做诊断输出
type ChecksumMismatchError struct {
	Expected types.Checksum // tarball 里存的
	Actual   types.Checksum // 重新算出来的
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// InnerError 内层归档解压/解包失败
type InnerError struct {
	Err error
}

func (e *InnerError) Error() string { return "inner tarball error: " + e.Err.Error() }
func (e *InnerError) Unwrap() error { return e.Err }

// OuterError 包装外层容器的底层归档库错误
type OuterError struct {
	Err error
}

func (e *OuterError) Error() string { return "tarball error: " + e.Err.Error() }
func (e *OuterError) Unwrap() error { return e.Err }
