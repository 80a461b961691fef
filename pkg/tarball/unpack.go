package tarball

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"hexpack/pkg/checksum"
	"hexpack/pkg/compressor"
	"hexpack/pkg/metadata"
	"hexpack/pkg/term"
	"hexpack/pkg/types"
)

// unpackState 是校验流水线的累加器
// 任何一步失败后 err 置位，后续阶段看到 err 直接透传，绝不覆盖
// (fail-fast 链：第一个错误就是调用方看到的错误)
type unpackState struct {
	raw  []byte
	dest string // "" 表示内存模式

	entries map[string][]byte
	names   []string // 外层每个头条目的名字，按出现顺序，含重名
	cs      types.Checksum
	meta    *term.Map
	files   []File

	err error
}

// Unpack 校验并解包 tarball，把内容还原到 dest 目录
// 返回 (规范化后的元数据, 校验和)
func Unpack(data []byte, dest string) (*term.Map, types.Checksum, error) {
	s := run(&unpackState{raw: data, dest: dest})
	return s.meta, s.cs, s.err
}

// UnpackInMemory 校验并解包到内存，不碰文件系统
// 额外返回内层文件列表 (路径 + 字节)
func UnpackInMemory(data []byte) (*term.Map, types.Checksum, []File, error) {
	s := run(&unpackState{raw: data})
	return s.meta, s.cs, s.files, s.err
}

// UnpackFile 从磁盘读 tarball 再解包
func UnpackFile(path string, dest string) (*term.Map, types.Checksum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var zero types.Checksum
		return nil, zero, fmt.Errorf("read tarball: %w", err)
	}
	return Unpack(data, dest)
}

// UnpackFileInMemory 从磁盘读 tarball，校验并解包到内存
func UnpackFileInMemory(path string) (*term.Map, types.Checksum, []File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var zero types.Checksum
		return nil, zero, nil, fmt.Errorf("read tarball: %w", err)
	}
	return UnpackInMemory(data)
}

// run 按协议顺序走完整个校验链
func run(s *unpackState) *unpackState {
	return s.
		checkSize().
		extractOuter().
		checkEntryNames().
		checkVersion().
		verifyChecksum().
		writeMetadataSideFile().
		decodeMetadata().
		normalizeMetadata().
		extractContents()
}

// checkSize 便宜的前置检查：超限的输入连解包都不开始
func (s *unpackState) checkSize() *unpackState {
	if s.err != nil {
		return s
	}
	if len(s.raw) > MaxSize {
		s.err = ErrTooBig
	}
	return s
}

// extractOuter 把外层 tar 解到内存映射
func (s *unpackState) extractOuter() *unpackState {
	if s.err != nil {
		return s
	}
	entries, names, err := extractAll(s.raw)
	if err != nil {
		s.err = &OuterError{Err: err}
		return s
	}
	if len(names) == 0 {
		s.err = ErrEmpty
		return s
	}
	s.entries = entries
	s.names = names
	return s
}

// checkEntryNames 条目名集合必须恰好是四个必需名，每个出现一次
// 按头条目名单查，而不是按内容映射查：目录伪装的条目和重名条目
// 都算未知名。未知名优先于缺失名报告 (两类同时出现时只报未知)
func (s *unpackState) checkEntryNames() *unpackState {
	if s.err != nil {
		return s
	}

	required := make(map[string]bool, len(requiredFiles))
	for _, name := range requiredFiles {
		required[name] = true
	}

	seen := make(map[string]int, len(s.names))
	unknownSet := make(map[string]bool)
	for _, name := range s.names {
		seen[name]++
		if !required[name] || seen[name] > 1 {
			unknownSet[name] = true
		}
	}
	if len(unknownSet) > 0 {
		unknown := make([]string, 0, len(unknownSet))
		for name := range unknownSet {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		s.err = &InvalidFilesError{Names: unknown}
		return s
	}

	var missing []string
	for _, name := range requiredFiles {
		if _, ok := s.entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		s.err = &MissingFilesError{Names: missing}
	}
	return s
}

// checkVersion VERSION 必须在支持集合里
func (s *unpackState) checkVersion() *unpackState {
	if s.err != nil {
		return s
	}
	version := string(s.entries[fileVersion])
	if !supportedVersions[version] {
		s.err = &BadVersionError{Value: version}
	}
	return s
}

// verifyChecksum 重算摘要并和存储值逐字节比对
func (s *unpackState) verifyChecksum() *unpackState {
	if s.err != nil {
		return s
	}

	stored, err := types.ParseChecksum(string(s.entries[fileChecksum]))
	if err != nil {
		s.err = ErrInvalidChecksum
		return s
	}

	actual := checksum.Compute(
		string(s.entries[fileVersion]),
		string(s.entries[fileMetadata]),
		s.entries[fileContents],
	)
	if stored != actual {
		s.err = &ChecksumMismatchError{Expected: stored, Actual: actual}
		return s
	}
	s.cs = actual
	return s
}

// writeMetadataSideFile 磁盘模式下落一份原始元数据文本
// 在解码之前写：就算元数据解不开，外部工具也能拿到原文
func (s *unpackState) writeMetadataSideFile() *unpackState {
	if s.err != nil || s.dest == "" {
		return s
	}
	if err := os.MkdirAll(s.dest, 0o755); err != nil {
		s.err = fmt.Errorf("create destination: %w", err)
		return s
	}
	side := filepath.Join(s.dest, metadataSideFile)
	if err := os.WriteFile(side, s.entries[fileMetadata], 0o644); err != nil {
		s.err = fmt.Errorf("write %s: %w", metadataSideFile, err)
	}
	return s
}

// decodeMetadata 受限文法解码，错误种类原样向上传
func (s *unpackState) decodeMetadata() *unpackState {
	if s.err != nil {
		return s
	}
	meta, err := term.DecodeMetadata(string(s.entries[fileMetadata]))
	if err != nil {
		s.err = err
		return s
	}
	s.meta = meta
	return s
}

// normalizeMetadata 已知字段整形 (build_tools / requirements / links / extra)
func (s *unpackState) normalizeMetadata() *unpackState {
	if s.err != nil {
		return s
	}
	metadata.Normalize(s.meta)
	return s
}

// extractContents 解压并展开内层归档 (内存或磁盘)
func (s *unpackState) extractContents() *unpackState {
	if s.err != nil {
		return s
	}
	inner, err := compressor.Decompress(s.entries[fileContents])
	if err != nil {
		s.err = &InnerError{Err: err}
		return s
	}

	if s.dest == "" {
		files, err := extractInnerToMemory(inner)
		if err != nil {
			s.err = &InnerError{Err: err}
			return s
		}
		s.files = files
		return s
	}

	if err := extractInnerToDisk(inner, s.dest); err != nil {
		s.err = &InnerError{Err: err}
	}
	return s
}
