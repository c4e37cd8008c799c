package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: content\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				Level string `default:"info"`
				Tags  []string
				Quiet bool
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse(nil)
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(context.Background(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if got["level"] != "info" || got["quiet"] != false {
				t.Errorf("generated config = %v, want level info and quiet false", got)
			}

			if _, ok := got["tags"]; ok {
				t.Errorf("generated config includes empty flag tags: %v", got)
			}

			if _, ok := got["existing"]; ok {
				t.Errorf("generated config kept previous content: %v", got)
			}
		})
	}
}

func TestInitSettings(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `help:"Enable verbose output"`
		Output  string   `help:"Output file"`
		Count   int      `help:"Number of items"`
		Tags    []string `help:"Tags"`
		Empty   string   `help:"Unset"`
		Secret  string   `help:"Hidden" hidden:""`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse([]string{
		"--verbose", "--output=test.txt", "--count=5",
		"--tags=a,b", "--secret=x",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := (&Init{}).settings(WithContext(context.Background(), ktx))

	want := yaml.MapSlice{
		{Key: "verbose", Value: true},
		{Key: "output", Value: "test.txt"},
		{Key: "count", Value: 5},
		{Key: "tags", Value: []string{"a", "b"}},
	}

	if len(got) != len(want) {
		t.Fatalf("settings() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i].Key != want[i].Key {
			t.Errorf("settings()[%d].Key = %v, want %v", i, got[i].Key, want[i].Key)
		}
	}

	out, err := yaml.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}

	var back map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}

	if back["output"] != "test.txt" || back["verbose"] != true {
		t.Errorf("round trip = %v", back)
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{[]string{}, true},
		{map[string]string{}, true},
		{(*int)(nil), true},
		{"x", false},
		{false, false},
		{0, false},
		{[]string{"a"}, false},
		{map[string]string{"a": "b"}, false},
	}

	for _, tt := range tests {
		if got := isEmpty(tt.v); got != tt.want {
			t.Errorf("isEmpty(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
