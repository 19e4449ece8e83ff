package config

import (
	"os"
	"path/filepath"
	"sync"
)

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "SECONDBRAIN_DATA_DIR"
	// DefaultDataDirName 默认数据目录名
	DefaultDataDirName = ".secondbrain"
	// inboxDirName 默认收件箱目录名
	inboxDirName = "inbox"
)

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// GetDataDir 获取数据根目录
// 优先读取 SECONDBRAIN_DATA_DIR，默认 ~/.secondbrain/
// 数据库、配置文件、收件箱等路径都从这里派生
func GetDataDir() string {
	dataDirOnce.Do(func() {
		if dir := os.Getenv(EnvDataDir); dir != "" {
			dataDirPath = dir
			return
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			dataDirPath = DefaultDataDirName
			return
		}
		dataDirPath = filepath.Join(homeDir, DefaultDataDirName)
	})
	return dataDirPath
}

// ResolveInboxDir 返回收件箱目录，"default" 表示数据目录下的 inbox
func (c *IngestionConfig) ResolveInboxDir() string {
	if c.InboxDir == "default" {
		return filepath.Join(GetDataDir(), inboxDirName)
	}
	return c.InboxDir
}

// ResetDataDir 重置数据目录缓存（仅用于测试）
func ResetDataDir() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}
