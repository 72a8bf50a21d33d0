package store

import (
	"strings"
	"sync"
	"testing"

	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
)

func TestCreateAndGetSession(t *testing.T) {
	s := New(0)

	sess, err := s.CreateSession("")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Name != "sessions/session-1" {
		t.Fatalf("unexpected name: %s", sess.Name)
	}
	if sess.State != (editor.State{}) {
		t.Fatalf("expected empty state, got %+v", sess.State)
	}

	got, err := s.GetSession(sess.Name)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Name != sess.Name {
		t.Fatalf("got %s, want %s", got.Name, sess.Name)
	}
}

func TestCreateSeededSession(t *testing.T) {
	s := New(0)
	sess, err := s.CreateSession("6×7")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.State.Answer != "42" {
		t.Fatalf("expected answer 42, got %q", sess.State.Answer)
	}
}

func TestPressKeys(t *testing.T) {
	s := New(0)
	sess, _ := s.CreateSession("")

	got, err := s.PressKeys(sess.Name, "1", "0", "÷", "4")
	if err != nil {
		t.Fatalf("PressKeys: %v", err)
	}
	if got.State.Expression != "10÷4" || got.State.Answer != "2.5" {
		t.Fatalf("unexpected state: %+v", got.State)
	}
	if got.KeyCount != 4 {
		t.Fatalf("expected 4 key presses, got %d", got.KeyCount)
	}

	got, err = s.Backspace(sess.Name)
	if err != nil {
		t.Fatalf("Backspace: %v", err)
	}
	if got.State.Expression != "10÷" || got.State.Answer != "" {
		t.Fatalf("unexpected state after backspace: %+v", got.State)
	}
}

func TestPressKeysUnknownLabelIsAtomic(t *testing.T) {
	s := New(0)
	sess, _ := s.CreateSession("")

	if _, err := s.PressKeys(sess.Name, "1", "sqrt"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	got, _ := s.GetSession(sess.Name)
	if got.State.Expression != "" {
		t.Fatalf("expected untouched session, got %q", got.State.Expression)
	}
}

func TestSessionErrorReason(t *testing.T) {
	s := New(0)
	sess, _ := s.CreateSession("")

	got, err := s.PressKeys(sess.Name, "1", "÷", "0")
	if err != nil {
		t.Fatalf("PressKeys: %v", err)
	}
	if got.State.Answer != editor.ErrorAnswer {
		t.Fatalf("expected Error answer, got %q", got.State.Answer)
	}
	if !strings.Contains(got.Error, "DivisionByZero") {
		t.Fatalf("expected DivisionByZero reason, got %q", got.Error)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := New(0)

	if _, err := s.GetSession("sessions/nope"); err == nil {
		t.Error("GetSession: expected error")
	}
	if _, err := s.PressKeys("sessions/nope", "1"); err == nil {
		t.Error("PressKeys: expected error")
	}
	if _, err := s.Backspace("sessions/nope"); err == nil {
		t.Error("Backspace: expected error")
	}
	if err := s.DeleteSession("sessions/nope"); err == nil {
		t.Error("DeleteSession: expected error")
	}
}

func TestListAndDeleteSessions(t *testing.T) {
	s := New(0)
	a, _ := s.CreateSession("")
	b, _ := s.CreateSession("")

	list := s.ListSessions()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].Name != a.Name || list[1].Name != b.Name {
		t.Fatalf("unexpected order: %s, %s", list[0].Name, list[1].Name)
	}

	if err := s.DeleteSession(a.Name); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if len(s.ListSessions()) != 1 {
		t.Fatal("expected 1 session after delete")
	}
}

func TestSessionLimit(t *testing.T) {
	s := New(2)
	s.CreateSession("")
	s.CreateSession("")

	if _, err := s.CreateSession(""); err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestConcurrentPresses(t *testing.T) {
	s := New(0)
	sess, _ := s.CreateSession("")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.PressKeys(sess.Name, "1"); err != nil {
				t.Errorf("PressKeys: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetSession(sess.Name)
	if got.KeyCount != 50 || len(got.State.Expression) != 50 {
		t.Fatalf("expected 50 presses, got count=%d expr=%q", got.KeyCount, got.State.Expression)
	}
}

func TestCreateSessionRejectsUntypeableSeed(t *testing.T) {
	s := New(0)

	for _, seed := range []string{"1..2", "3+×4", "05", "2^3"} {
		if _, err := s.CreateSession(seed); err == nil {
			t.Errorf("CreateSession(%q): expected error", seed)
		}
	}
	if len(s.ListSessions()) != 0 {
		t.Fatal("rejected seeds must not create sessions")
	}

	sess, err := s.CreateSession("-5+2")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.State.Answer != "-3" {
		t.Fatalf("expected answer -3, got %q", sess.State.Answer)
	}
}
