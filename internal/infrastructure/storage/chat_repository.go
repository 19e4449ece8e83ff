package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/source"
)

// 确保 ChatRepository 实现了 chat.Repository 接口
var _ chat.Repository = (*ChatRepository)(nil)

// ChatRepository 会话仓储 SQLite 实现
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository 创建会话仓储
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

const chatColumns = `id, user_id, title, source_type, source_url, source_content, created_at, updated_at`

// Create 创建会话
func (r *ChatRepository) Create(ctx context.Context, s *chat.Session) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if s.SourceType == "" {
		s.SourceType = source.TypeGeneral
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (`+chatColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Title, string(s.SourceType), s.SourceURL, s.SourceContent,
		s.CreatedAt.UnixMilli(), s.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// FindByID 按 ID 查找会话
func (r *ChatRepository) FindByID(ctx context.Context, id string) (*chat.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = ?`, id)
	s, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, chat.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	return s, nil
}

// FindByUser 按用户列出会话，最近更新的在前
// 列表不需要来源正文，source_content 置空以减少读取量
func (r *ChatRepository) FindByUser(ctx context.Context, userID string) ([]*chat.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, source_type, source_url, '', created_at, updated_at
		FROM chats WHERE user_id = ?
		ORDER BY updated_at DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var sessions []*chat.Session
	for rows.Next() {
		s, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateTitle 修改标题
func (r *ChatRepository) UpdateTitle(ctx context.Context, id, title string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	return requireAffected(res)
}

// Delete 删除会话、消息和片段
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE chat_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	return tx.Commit()
}

// AppendMessages 按顺序追加消息并刷新会话更新时间
func (r *ChatRepository) AppendMessages(ctx context.Context, chatID string, msgs ...*chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, chat_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.ChatID = chatID
		if _, err := stmt.ExecContext(ctx, m.ID, chatID, string(m.Role), m.Content, m.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, now.UnixMilli(), chatID)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// ListMessages 按插入顺序列出消息
func (r *ChatRepository) ListMessages(ctx context.Context, chatID string) ([]*chat.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages WHERE chat_id = ? ORDER BY seq ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*chat.Message
	for rows.Next() {
		var m chat.Message
		var role string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.ChatID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = chat.Role(role)
		m.CreatedAt = time.UnixMilli(createdAt)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChat(row scanner) (*chat.Session, error) {
	var s chat.Session
	var sourceType string
	var createdAt, updatedAt int64
	if err := row.Scan(&s.ID, &s.UserID, &s.Title, &sourceType, &s.SourceURL, &s.SourceContent, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.SourceType = source.Type(sourceType)
	s.CreatedAt = time.UnixMilli(createdAt)
	s.UpdatedAt = time.UnixMilli(updatedAt)
	return &s, nil
}

// requireAffected 没有行被修改时返回 ErrChatNotFound
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return chat.ErrChatNotFound
	}
	return nil
}
