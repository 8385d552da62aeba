// Package fileurl provides small filesystem path helpers
// Package fileurl 提供文件路径相关的小工具
package fileurl

import (
	"os"
	"path/filepath"
)

// IsExist determines if file or directory exists
// IsExist 判断文件或目录是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of the given path
// CreatePath 创建所给路径的父目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	err := os.MkdirAll(dir, perm)
	if err != nil {
		return err
	}
	return nil
}
