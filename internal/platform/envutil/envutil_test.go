package envutil

import "testing"

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("LEDGER_TEST_EMPTY", "  ")
	if got := GetEnv("LEDGER_TEST_EMPTY", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv: want=fallback got=%q", got)
	}
	t.Setenv("LEDGER_TEST_SET", " sqlite ")
	if got := GetEnv("LEDGER_TEST_SET", "file", nil); got != "sqlite" {
		t.Fatalf("GetEnv: want=sqlite got=%q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("LEDGER_TEST_INT", "42")
	if got := GetEnvAsInt("LEDGER_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("GetEnvAsInt: want=42 got=%d", got)
	}
	t.Setenv("LEDGER_TEST_INT", "nope")
	if got := GetEnvAsInt("LEDGER_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt invalid: want=7 got=%d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	cases := map[string]bool{"on": true, "TRUE": true, "0": false, "off": false, "maybe": true}
	for raw, want := range cases {
		t.Setenv("LEDGER_TEST_BOOL", raw)
		if got := GetEnvAsBool("LEDGER_TEST_BOOL", true, nil); got != want {
			t.Fatalf("GetEnvAsBool(%q): want=%v got=%v", raw, want, got)
		}
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("LEDGER_TEST_FLOAT", "0.25")
	if got := GetEnvAsFloat("LEDGER_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("GetEnvAsFloat: want=0.25 got=%v", got)
	}
	t.Setenv("LEDGER_TEST_FLOAT", "abc")
	if got := GetEnvAsFloat("LEDGER_TEST_FLOAT", 0.1, nil); got != 0.1 {
		t.Fatalf("GetEnvAsFloat invalid: want=0.1 got=%v", got)
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("LEDGER_TEST_LIST", " https://a.example , ,https://b.example")
	got := GetEnvAsList("LEDGER_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("GetEnvAsList: got=%v", got)
	}
}
