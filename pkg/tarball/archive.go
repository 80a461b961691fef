package tarball

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 通用 tar 读写。写入端把时间/uid/gid/格式全部钉死，
// 保证同样的输入永远得到同样的字节。

// newHeader 构造一个确定性的 tar 头
func newHeader(name string, size int64, mode int64, typeflag byte) *tar.Header {
	return &tar.Header{
		Name:     name,
		Size:     size,
		Mode:     mode,
		Typeflag: typeflag,
		ModTime:  epoch,
		Uid:      0,
		Gid:      0,
		// 钉死 USTAR，避免 Go 按字段自动升级成 PAX (会混入额外头条目)
		Format: tar.FormatUSTAR,
	}
}

// writeEntry 往 tar 里追加一个普通文件条目
func writeEntry(tw *tar.Writer, name string, data []byte, mode int64) error {
	if mode == 0 {
		mode = 0o644
	}
	hdr := newHeader(name, int64(len(data)), mode, tar.TypeReg)
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write data %s: %w", name, err)
	}
	return nil
}

// packInnerFiles 把文件列表打成内层 tar (未压缩)
// 条目顺序 = 调用方给的顺序，这也是确定性的一部分
func packInnerFiles(files []File) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, f := range files {
		if f.Name == "" {
			return nil, errors.New("file entry with empty name")
		}

		// 1. 符号链接条目
		if f.Link != "" {
			hdr := newHeader(f.Name, 0, 0o777, tar.TypeSymlink)
			hdr.Linkname = f.Link
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, fmt.Errorf("write symlink %s: %w", f.Name, err)
			}
			continue
		}

		// 2. 内容来源：显式字节或磁盘
		data := f.Data
		mode := f.Mode
		if data == nil && f.Source != "" {
			info, err := os.Lstat(f.Source)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", f.Source, err)
			}
			if mode == 0 {
				mode = int64(info.Mode().Perm())
			}
			data, err = os.ReadFile(f.Source)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Source, err)
			}
		}

		if err := writeEntry(tw, f.Name, data, mode); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close inner tar: %w", err)
	}
	return buf.Bytes(), nil
}

// extractAll 把 tar 解到内存里的 name -> bytes 映射
// names 记录每一个头条目 (含非普通文件和重名)，条目集合校验要用：
// 目录条目或重复条目不能静默溜过“恰好四个名字”的检查
func extractAll(data []byte) (entries map[string][]byte, names []string, err error) {
	entries = make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, names, nil
		}
		if err != nil {
			return nil, nil, err
		}
		names = append(names, hdr.Name)
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("read entry %s: %w", hdr.Name, err)
		}
		if _, dup := entries[hdr.Name]; !dup {
			entries[hdr.Name] = content
		}
	}
}

// extractInnerToMemory 把内层 tar 解成文件列表 (路径 + 字节)
func extractInnerToMemory(data []byte) ([]File, error) {
	var files []File
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		switch hdr.Typeflag {
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read entry %s: %w", hdr.Name, err)
			}
			files = append(files, File{Name: hdr.Name, Data: content, Mode: hdr.Mode})
		case tar.TypeSymlink:
			files = append(files, File{Name: hdr.Name, Link: hdr.Linkname})
		case tar.TypeDir:
			// 目录条目跳过：目录结构由文件路径隐式承载
		}
	}
}

// extractInnerToDisk 把内层 tar 还原到目标目录
//
// 归档内容不可信。所有磁盘操作都走 os.Root，内核层面保证任何
// 写入都不会穿过符号链接逃出 dest；符号链接自己的目标在创建前
// 还要过一遍词法检查，拒绝绝对路径和越界的相对路径。
//
// 解完之后把每个路径的修改时间统一 touch 成当前时间：
// tar 里的时间戳是为可复现性伪造的，不能泄漏到文件系统的“新鲜度”判断里。
func extractInnerToDisk(data []byte, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	root, err := os.OpenRoot(dest)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer root.Close()

	var written []string
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		rel, err := secureRelPath(hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := root.MkdirAll(rel, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", hdr.Name, err)
			}
			written = append(written, rel)
		case tar.TypeSymlink:
			if err := secureLinkTarget(rel, hdr.Linkname); err != nil {
				return err
			}
			if dir := filepath.Dir(rel); dir != "." {
				if err := root.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := root.Symlink(hdr.Linkname, rel); err != nil {
				return fmt.Errorf("symlink %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if dir := filepath.Dir(rel); dir != "." {
				if err := root.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			content, err := io.ReadAll(tr)
			if err != nil {
				return fmt.Errorf("read entry %s: %w", hdr.Name, err)
			}
			mode := os.FileMode(hdr.Mode & 0o777)
			if mode == 0 {
				mode = 0o644
			}
			if err := root.WriteFile(rel, content, mode); err != nil {
				return fmt.Errorf("write %s: %w", hdr.Name, err)
			}
			written = append(written, rel)
		}
	}

	// 统一 touch 到当前时间
	now := time.Now()
	for _, rel := range written {
		if err := root.Chtimes(rel, now, now); err != nil {
			return fmt.Errorf("touch %s: %w", rel, err)
		}
	}
	return nil
}

// secureRelPath 把归档内路径清洗成 dest 下的相对路径，拒绝越界 (../ 逃逸)
func secureRelPath(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry path escapes destination: %s", name)
	}
	return cleaned, nil
}

// secureLinkTarget 检查符号链接的目标在按链接所在目录解析后仍留在 dest 内
func secureLinkTarget(rel, linkname string) error {
	target := filepath.FromSlash(linkname)
	if filepath.IsAbs(target) {
		return fmt.Errorf("symlink %s targets an absolute path: %s", rel, linkname)
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(rel), target))
	if resolved == ".." || strings.HasPrefix(resolved, ".."+string(filepath.Separator)) {
		return fmt.Errorf("symlink %s escapes destination: %s", rel, linkname)
	}
	return nil
}
