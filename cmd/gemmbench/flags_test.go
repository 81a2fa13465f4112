package main

import (
	"path/filepath"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,", []string{"a", "b"}},
	}
	for _, tc := range tests {
		got := splitList(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("splitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitList(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestParseMCases(t *testing.T) {
	got, err := parseMCases("1,16,128")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 128 {
		t.Fatalf("parseMCases = %v", got)
	}

	for _, bad := range []string{"0", "-4", "x", "1,,y"} {
		if _, err := parseMCases(bad); err == nil {
			t.Fatalf("parseMCases(%q) accepted invalid input", bad)
		}
	}

	empty, err := parseMCases("")
	if err != nil || empty != nil {
		t.Fatalf("parseMCases(\"\") = %v, %v", empty, err)
	}
}

func TestResolveModelsFlag(t *testing.T) {
	all, err := resolveModelsFlag("")
	if err != nil || len(all) != 8 {
		t.Fatalf("expected all 8 models, got %d (%v)", len(all), err)
	}

	one, err := resolveModelsFlag("yi-34b")
	if err != nil || len(one) != 1 || one[0].Name != "yi-34b" {
		t.Fatalf("resolveModelsFlag(yi-34b) = %v, %v", one, err)
	}

	if _, err := resolveModelsFlag("llama2-7b,unknown"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestConfigPath(t *testing.T) {
	path := configPath()
	if path == "" {
		t.Skip("no user config dir in this environment")
	}
	if filepath.Base(filepath.Dir(path)) != "gemmbench" {
		t.Fatalf("config path not under gemmbench dir: %s", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Fatalf("unexpected config file name: %s", path)
	}
}
