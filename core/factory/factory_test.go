package factory

import (
	"strings"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A     int       `json:"a"`
	Since time.Time `json:"since"`
}

func sampleFactory(conf map[string]any) (*sample, error) {
	var c sampleConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sample{A: c.A}, nil
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", sampleFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if err := reg.Register("s", sampleFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("s", sampleFactory); err == nil {
		t.Fatal("expected duplicate error")
	}
	_, err := reg.Create(ModuleConfig{Type: "y"})
	if err == nil || !strings.Contains(err.Error(), "[s]") {
		t.Fatalf("expected unknown type error listing known types, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[*sample]()
	for _, n := range []string{"sqlite", "csv", "influx"} {
		if err := reg.Register(n, sampleFactory); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	if got := strings.Join(reg.Names(), ","); got != "csv,influx,sqlite" {
		t.Fatalf("names mismatch: %s", got)
	}
}

// Environment overrides deliver numbers as strings.
func TestDecode_WeakTyping(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "7", "since": "2020-01-02T03:04:05Z"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.A != 7 {
		t.Fatalf("expected 7 got %d", c.A)
	}
	if want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC); !c.Since.Equal(want) {
		t.Fatalf("expected %s got %s", want, c.Since)
	}
}

func TestDecode_BadValue(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "seven"}, &c); err == nil {
		t.Fatal("expected decode error")
	}
}
