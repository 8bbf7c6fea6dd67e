package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/cricdash/internal/cli"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CRICDASH_CRICBUZZ__API_KEY", "")

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(out, "cricdash v") {
		t.Errorf("version output should contain 'cricdash v', got: %s", out)
	}
}

func TestAdaptersRegistered(t *testing.T) {
	for _, name := range []string{"mysql", "postgres"} {
		if !adapter.IsRegistered(name) {
			t.Errorf("adapter %q should be registered by main", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(out, "cricdash") {
		t.Errorf("bash completion should mention cricdash")
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestQueriesList(t *testing.T) {
	out, err := execute(t, "queries", "list", "-o", "md")
	if err != nil {
		t.Fatalf("queries list error = %v", err)
	}
	if !strings.Contains(out, "| q01 |") {
		t.Errorf("expected catalog table, got: %s", out)
	}
}

func TestUnknownCRUDType(t *testing.T) {
	_, err := execute(t, "queries", "list", "--crud-type", "oracle")
	if err == nil {
		t.Fatal("expected error for unknown crud type")
	}
}
