package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type stubOptions struct {
	Name string
	errs []error
}

func (o *stubOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Name, "name", o.Name, "")
}

func (o *stubOptions) Validate() []error { return o.errs }

func TestAppRejectsInvalidOptions(t *testing.T) {
	opts := &stubOptions{errs: []error{errors.New("name is required")}}
	a := NewApp("test-app", "test",
		WithOptions(opts),
		WithNoConfig(),
		WithDefaultValidArgs(),
	)
	a.cmd.SetArgs([]string{})

	if err := a.cmd.Execute(); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Execute() = %v, want validation failure", err)
	}
}

func TestAppRejectsPositionalArgs(t *testing.T) {
	a := NewApp("test-app", "test", WithNoConfig(), WithDefaultValidArgs(),
		WithOptions(&stubOptions{}))
	a.cmd.SetArgs([]string{"surplus"})

	if err := a.cmd.Execute(); err == nil {
		t.Error("accepted a positional argument")
	}
}

func TestAppRunsRunFunc(t *testing.T) {
	ran := false
	a := NewApp("test-app", "test", WithNoConfig(),
		WithOptions(&stubOptions{}),
		WithRunFunc(func() error { ran = true; return nil }),
	)
	a.cmd.SetArgs([]string{"--name", "x"})

	if err := a.cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !ran {
		t.Error("run func not invoked")
	}
}

func TestLoadConfigAppliesFileValues(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("name: from-file\nset-on-cli: file-loses\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	name := fs.String("name", "default", "")
	cli := fs.String("set-on-cli", "default", "")
	fs.String(configFlagName, "", "")
	if err := fs.Set(configFlagName, cfgFile); err != nil {
		t.Fatal(err)
	}
	if err := fs.Set("set-on-cli", "cli-wins"); err != nil {
		t.Fatal(err)
	}

	if err := loadConfig(fs); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if *name != "from-file" {
		t.Errorf("unset flag = %q, want the file value", *name)
	}
	if *cli != "cli-wins" {
		t.Errorf("explicitly set flag = %q, want the command-line value", *cli)
	}
}

func TestAggregateErrors(t *testing.T) {
	one := errors.New("only")
	if got := aggregateErrors([]error{one}); got != one {
		t.Errorf("single error not returned as-is: %v", got)
	}
	got := aggregateErrors([]error{errors.New("a"), errors.New("b")})
	if !strings.Contains(got.Error(), "a") || !strings.Contains(got.Error(), "b") {
		t.Errorf("aggregate lost errors: %v", got)
	}
}

func TestIsSensitiveFlag(t *testing.T) {
	if !isSensitiveFlag("provision.passphrase") || !isSensitiveFlag("mqtt.password") {
		t.Error("secret flags not flagged")
	}
	if isSensitiveFlag("provision.ssid") {
		t.Error("ssid flagged as sensitive")
	}
}
