package filelist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"hexpack/pkg/tarball"
)

// Collect 遍历包目录，产出排好序的文件列表
//
// 路径统一成斜杠分隔的相对路径。结果按路径排序：遍历顺序因文件系统
// 而异，排序之后同一棵目录树在哪台机器上都打出同样的包。
func Collect(root string) ([]tarball.File, error) {
	matcher, err := NewMatcher(root)
	if err != nil {
		return nil, fmt.Errorf("compile ignore rules: %w", err)
	}

	var files []tarball.File
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err // 权限错误等
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		// 1. 忽略规则：目录命中就整棵剪掉
		if matcher.Matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// 2. 目录本身不进列表，目录结构由文件路径隐式承载
		if d.IsDir() {
			return nil
		}

		// 3. 符号链接按链接条目收，不追目标
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", rel, err)
			}
			files = append(files, tarball.File{Name: rel, Link: target})
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, tarball.File{
			Name:   rel,
			Source: path,
			Mode:   int64(info.Mode().Perm()),
		})
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
