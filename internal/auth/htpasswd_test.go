package auth

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// writeHtpasswd はテスト用のhtpasswdファイルを作成するヘルパー。
func writeHtpasswd(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.htpasswd")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("htpasswdファイルの作成に失敗: %v", err)
	}
	return path
}

// bcryptHash はテスト用のbcryptハッシュを生成するヘルパー。
func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcryptハッシュの生成に失敗: %v", err)
	}
	return string(hash)
}

func TestLoadHtpasswd_ValidFile(t *testing.T) {
	path := writeHtpasswd(t,
		"admin:"+bcryptHash(t, "adminpass")+"\n"+
			"guest1:"+bcryptHash(t, "guestpass")+"\n",
	)

	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}

	if store.Users() != 2 {
		t.Errorf("Users() = %d, want 2", store.Users())
	}
}

func TestLoadHtpasswd_IgnoresCommentsAndBlankLines(t *testing.T) {
	path := writeHtpasswd(t,
		"# コメント行\n"+
			"\n"+
			"admin:"+bcryptHash(t, "adminpass")+"\n",
	)

	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}
	if store.Users() != 1 {
		t.Errorf("Users() = %d, want 1", store.Users())
	}
}

func TestLoadHtpasswd_InvalidEntry_ReturnsError(t *testing.T) {
	path := writeHtpasswd(t, "no-colon-here\n")

	if _, err := LoadHtpasswd(path); err == nil {
		t.Error("expected error for malformed entry, got nil")
	}
}

func TestLoadHtpasswd_MissingFile_ReturnsError(t *testing.T) {
	if _, err := LoadHtpasswd("/nonexistent/users.htpasswd"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestVerify_CorrectPassword(t *testing.T) {
	path := writeHtpasswd(t, "admin:"+bcryptHash(t, "adminpass")+"\n")
	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}

	if !store.Verify("admin", "adminpass") {
		t.Error("Verify should succeed with correct password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	path := writeHtpasswd(t, "admin:"+bcryptHash(t, "adminpass")+"\n")
	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}

	if store.Verify("admin", "wrongpass") {
		t.Error("Verify should fail with wrong password")
	}
}

func TestVerify_UnknownUser(t *testing.T) {
	path := writeHtpasswd(t, "admin:"+bcryptHash(t, "adminpass")+"\n")
	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}

	if store.Verify("nobody", "adminpass") {
		t.Error("Verify should fail for unknown user")
	}
}

func TestLoadHtpasswd_2yPrefixIsAccepted(t *testing.T) {
	// htpasswd -B は $2y$ プレフィックスで出力する。
	hash := bcryptHash(t, "secret")
	hash = "$2y$" + hash[len("$2a$"):]
	path := writeHtpasswd(t, "user:"+hash+"\n")

	store, err := LoadHtpasswd(path)
	if err != nil {
		t.Fatalf("LoadHtpasswd returned error: %v", err)
	}

	if !store.Verify("user", "secret") {
		t.Error("Verify should accept $2y$ prefixed hash")
	}
}
