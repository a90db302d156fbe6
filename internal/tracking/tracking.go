package tracking

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CookieName はトラッキング識別子を保持するCookieの名前。
const CookieName = "tracking_id"

// cookieTTL はCookieの有効期間。発行のたびに24時間後へ再計算される。
const cookieTTL = 24 * time.Hour

// ID はトラッキング識別子の内部表現。
// Cookie境界でのみ文字列形式 "<originalId>_<digest>" と相互変換する。
type ID struct {
	OriginalID string
	Digest     string
}

// String はCookieに格納する文字列形式を返す。
func (id ID) String() string {
	return id.OriginalID + "_" + id.Digest
}

// ParseID はCookie値をIDに分解する。
// 区切り文字を含まない値は不正としてfalseを返す（エラーではない）。
func ParseID(value string) (ID, bool) {
	i := strings.Index(value, "_")
	if i < 0 {
		return ID{}, false
	}
	return ID{OriginalID: value[:i], Digest: value[i+1:]}, true
}

// Manager はトラッキング識別子の発行と検証を行う。
type Manager struct {
	hasher *Hasher
}

// NewManager はManagerを生成する。
func NewManager(hasher *Hasher) *Manager {
	return &Manager{hasher: hasher}
}

// Validate は識別子が指定ユーザーに対して正当かを検証する。
// 識別子は発行時のユーザーに束縛されるため、別ユーザーの識別子は
// ダイジェスト再計算の不一致により拒否される。
func (m *Manager) Validate(id ID, identity string) bool {
	return m.hasher.Digest(id.OriginalID, identity) == id.Digest
}

// Ensure はリクエストのCookieからトラッキング識別子を読み取り、
// 正当であればそのまま返す（Cookieの書き換えは行わない）。
// 未設定・形式不正・ダイジェスト不一致の場合は新しい識別子を発行し、
// 有効期限24時間のCookieとしてレスポンスに書き込んでから返す。
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request, identity string) ID {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if id, ok := ParseID(cookie.Value); ok && m.Validate(id, identity) {
			return id
		}
	}

	id, err := m.newID(identity)
	if err != nil {
		// 発行失敗はクライアントに区別可能なエラーとしては見せない。
		slog.Error("failed to issue tracking id", slog.String("error", err.Error()))
		return ID{}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    CookieName,
		Value:   id.String(),
		Path:    "/",
		Expires: time.Now().Add(cookieTTL),
	})
	return id
}

// newID は暗号論的乱数8バイトを符号なし整数として解釈した値を元に、
// 新しい識別子を生成する。
func (m *Manager) newID(identity string) (ID, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return ID{}, fmt.Errorf("failed to generate original id: %w", err)
	}
	original := strconv.FormatUint(binary.BigEndian.Uint64(b), 10)
	return ID{
		OriginalID: original,
		Digest:     m.hasher.Digest(original, identity),
	}, nil
}
