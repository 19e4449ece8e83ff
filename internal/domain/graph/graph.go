// Package graph 定义知识图谱的节点与连线
package graph

import (
	"context"

	"github.com/secondbrain/backend/internal/domain/source"
)

// Invalidator 使用户的图谱缓存失效，写入来源或会话后同步调用
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// NodeType 节点类型
type NodeType string

const (
	// NodeSource 来源节点（一个带来源的会话）
	NodeSource NodeType = "source"
	// NodeKeyword 关键词节点
	NodeKeyword NodeType = "keyword"
)

// 节点颜色
const (
	ColorVideo    = "#ef4444"
	ColorDocument = "#3b82f6"
	ColorWeb      = "#10b981"
	ColorKeyword  = "#f59e0b"
)

// KeywordNodePrefix 关键词节点 ID 前缀
const KeywordNodePrefix = "kw:"

// Node 图谱节点
type Node struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Type  NodeType `json:"type"`
	Val   float64  `json:"val"`
}

// Link 图谱连线
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph 用户的知识图谱
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Empty 返回空图谱（nodes/links 序列化为 [] 而非 null）
func Empty() *Graph {
	return &Graph{Nodes: []Node{}, Links: []Link{}}
}

// ColorForSource 按来源分组返回节点颜色
func ColorForSource(sourceType string) string {
	switch source.BucketOf(sourceType) {
	case source.BucketVideo:
		return ColorVideo
	case source.BucketDocument:
		return ColorDocument
	default:
		return ColorWeb
	}
}
