package cmd

import (
	"testing"
)

func TestCommandTreeRegistered(t *testing.T) {
	expected := []string{
		"auth", "orgs", "dashboard", "tests", "limits", "health",
		"deploys", "flows", "perms", "import", "chat", "config",
		"version", "completion",
	}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestFormatterHonorsOutputFlag(t *testing.T) {
	orig := outputFlag
	defer func() { outputFlag = orig }()

	for _, format := range []string{"text", "json", "yaml"} {
		outputFlag = format
		if _, err := formatter(rootCmd); err != nil {
			t.Errorf("formatter(%q) error = %v", format, err)
		}
	}

	outputFlag = "xml"
	if _, err := formatter(rootCmd); err == nil {
		t.Error("formatter(xml) should fail")
	}
}

func TestRootHasOutputFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("output")
	if flag == nil {
		t.Fatal("--output flag is not registered")
	}
	if flag.DefValue != "text" {
		t.Errorf("--output default = %s, want text", flag.DefValue)
	}
}
