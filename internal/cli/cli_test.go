package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	want := map[string]bool{"run": false, "migrate": false, "import-questions": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestImportCmd_RejectsNonWorkbook(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"import-questions", "questions.csv", "--dry-run"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), ".xlsx") {
		t.Errorf("Execute() error = %v, want .xlsx error", err)
	}
}

func TestImportCmd_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"import-questions"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() without a file expected error, got nil")
	}
}
