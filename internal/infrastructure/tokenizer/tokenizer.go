// Package tokenizer 使用 tiktoken 计算 prompt 的 token 数量
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 离线加载 BPE 文件，运行时不访问网络
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Encoding 默认编码
const Encoding = "cl100k_base"

// Counter token 计数器
type Counter interface {
	Count(text string) int
}

// Tiktoken 基于 tiktoken 的计数器
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	instance    *Tiktoken
	instanceErr error
	once        sync.Once
)

// Get 获取单例，编码文件只加载一次
func Get() (*Tiktoken, error) {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(Encoding)
		if err != nil {
			instanceErr = err
			return
		}
		instance = &Tiktoken{encoding: enc}
	})
	return instance, instanceErr
}

// Count 计算 token 数量
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.encoding.Encode(text, nil, nil))
}

// Approx 编码不可用时的估算：约 4 个字符一个 token
type Approx struct{}

// Count 估算 token 数量
func (Approx) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// ProvideCounter 优先使用 tiktoken，加载失败时退化为估算
func ProvideCounter() Counter {
	t, err := Get()
	if err != nil {
		return Approx{}
	}
	return t
}
