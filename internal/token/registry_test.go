package token

import (
	"sync"
	"testing"
)

func TestRegistry_IssueAndVerify(t *testing.T) {
	r := NewRegistry()

	tok, err := r.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if len(tok) != tokenBytes*2 {
		t.Errorf("token length = %d, want %d", len(tok), tokenBytes*2)
	}

	if !r.Verify("alice", tok) {
		t.Error("issued token should verify")
	}
	if r.Verify("bob", tok) {
		t.Error("token should not verify for another user")
	}
	if r.Verify("alice", "deadbeefdeadbeef") {
		t.Error("unrelated value should not verify")
	}
}

func TestRegistry_Verify_DoesNotConsume(t *testing.T) {
	r := NewRegistry()

	tok, _ := r.Issue("alice")
	if !r.Verify("alice", tok) {
		t.Fatal("first verify should succeed")
	}
	if !r.Verify("alice", tok) {
		t.Error("verify should not consume the token")
	}
}

func TestRegistry_Issue_InvalidatesPreviousToken(t *testing.T) {
	r := NewRegistry()

	old, _ := r.Issue("alice")
	newTok, _ := r.Issue("alice")

	if r.Verify("alice", old) {
		t.Error("previous token should be invalidated by reissue")
	}
	if !r.Verify("alice", newTok) {
		t.Error("latest token should verify")
	}
}

func TestRegistry_Consume(t *testing.T) {
	r := NewRegistry()

	tok, _ := r.Issue("alice")
	r.Consume("alice")

	if r.Verify("alice", tok) {
		t.Error("consumed token should not verify")
	}

	// 未登録ユーザーのConsumeは何もしない
	r.Consume("nobody")
}

func TestRegistry_UnknownUser_NeverVerifies(t *testing.T) {
	r := NewRegistry()

	if r.Verify("alice", "") {
		t.Error("empty token for unknown user should not verify")
	}
}

func TestRegistry_IsolatesUsers(t *testing.T) {
	r := NewRegistry()

	aliceTok, _ := r.Issue("alice")
	bobTok, _ := r.Issue("bob")

	r.Consume("alice")

	if r.Verify("alice", aliceTok) {
		t.Error("alice's token should be consumed")
	}
	if !r.Verify("bob", bobTok) {
		t.Error("bob's token should be unaffected")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := r.Issue("alice")
			if err != nil {
				t.Errorf("Issue returned error: %v", err)
				return
			}
			r.Verify("alice", tok)
			r.Consume("alice")
		}()
	}
	wg.Wait()

	// 最終状態は未登録か最後に発行された1件のみ
	if r.Verify("alice", "") {
		t.Error("empty token should never verify")
	}
}
