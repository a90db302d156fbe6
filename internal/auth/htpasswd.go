// Package auth はhtpasswd形式の資格情報ファイルによるBasic認証の検証を提供する。
package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HtpasswdStore はユーザー名からbcryptハッシュを引く資格情報ストア。
// 起動時にファイルから1回読み込み、以降はイミュータブルとして扱う。
type HtpasswdStore struct {
	hashes map[string]string
}

// LoadHtpasswd は "ユーザー名:bcryptハッシュ" 形式の資格情報ファイルを読み込む。
// '#'で始まる行と空行は無視する。
// htpasswd -B が生成する $2y$ プレフィックスにも対応する。
func LoadHtpasswd(path string) (*HtpasswdStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open htpasswd file: %w", err)
	}
	defer f.Close()

	hashes := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, hash, found := strings.Cut(line, ":")
		if !found || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid htpasswd entry at line %d", lineNo)
		}

		// golang.org/x/crypto/bcryptは$2y$バリアントを受け付けないため、
		// 互換の$2b$へ読み替える。
		if strings.HasPrefix(hash, "$2y$") {
			hash = "$2b$" + hash[len("$2y$"):]
		}

		hashes[name] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read htpasswd file: %w", err)
	}

	return &HtpasswdStore{hashes: hashes}, nil
}

// Verify はユーザー名とパスワードの組が登録済み資格情報と一致するかを返す。
func (s *HtpasswdStore) Verify(username, password string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Users は登録済みユーザー数を返す。起動時のログ出力に使用する。
func (s *HtpasswdStore) Users() int {
	return len(s.hashes)
}
