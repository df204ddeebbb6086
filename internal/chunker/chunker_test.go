package chunker

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig(), wantErr: false},
		{name: "zero overlap", cfg: Config{Size: 100, Overlap: 0}, wantErr: false},
		{name: "zero size", cfg: Config{Size: 0, Overlap: 0}, wantErr: true},
		{name: "negative size", cfg: Config{Size: -5, Overlap: 0}, wantErr: true},
		{name: "negative overlap", cfg: Config{Size: 100, Overlap: -1}, wantErr: true},
		{name: "overlap equal to size", cfg: Config{Size: 100, Overlap: 100}, wantErr: true},
		{name: "overlap above size", cfg: Config{Size: 100, Overlap: 150}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want string
	}{
		{path: "README.md", want: "*chunker.Markdown"},
		{path: "docs/guide.MDX", want: "*chunker.Markdown"},
		{path: "notes.markdown", want: "*chunker.Markdown"},
		{path: "data.txt", want: "*chunker.Text"},
		{path: "config.yaml", want: "*chunker.Text"},
		{path: "settings.JSON", want: "*chunker.Text"},
		{path: "server.log", want: "*chunker.Text"},
		{path: "main.go", want: "*chunker.Code"},
		{path: "app.py", want: "*chunker.Code"},
		{path: "mystery.weird", want: "*chunker.Code"},
		{path: "Makefile", want: "*chunker.Code"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var got string
			switch ForFile(tt.path, cfg).(type) {
			case *Markdown:
				got = "*chunker.Markdown"
			case *Text:
				got = "*chunker.Text"
			case *Code:
				got = "*chunker.Code"
			}
			if got != tt.want {
				t.Errorf("ForFile(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{path: "x.py", want: LangPython},
		{path: "x.java", want: LangJava},
		{path: "x.kt", want: LangJava},
		{path: "x.c", want: LangCCpp},
		{path: "x.hpp", want: LangCCpp},
		{path: "x.cs", want: LangCCpp},
		{path: "x.swift", want: LangCCpp},
		{path: "x.js", want: LangJavaScript},
		{path: "x.tsx", want: LangJavaScript},
		{path: "x.go", want: LangGo},
		{path: "x.rs", want: LangRust},
		{path: "x.weird", want: LangGeneric},
		{path: "noext", want: LangGeneric},
		{path: "dir/X.PY", want: LangPython},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
			}
			// Classification is pure: a second call must agree.
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) second call = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
