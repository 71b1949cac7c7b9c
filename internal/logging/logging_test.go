package logging

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		t.Run(env, func(t *testing.T) {
			l, err := New(env)
			if err != nil {
				t.Fatalf("New(%q): %v", env, err)
			}
			if l == nil {
				t.Fatal("logger is nil")
			}
			_ = l.Sync()
		})
	}
}

func TestNew_ProductionDisablesDebug(t *testing.T) {
	l, err := New("PRODUCTION")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(-1) {
		t.Error("production logger should not enable debug level")
	}
}

func TestMust(t *testing.T) {
	if Must("development") == nil {
		t.Fatal("Must returned nil")
	}
}
