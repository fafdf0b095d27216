package main

import (
	"bytes"
	"testing"
)

func TestRootCmd_Use(t *testing.T) {
	if rootCmd.Use != "todoapp" {
		t.Errorf("rootCmd.Use = %s, expected todoapp", rootCmd.Use)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"json", "debug"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("rootCmd should have --%s flag", name)
			continue
		}
		if flag.DefValue != "false" {
			t.Errorf("--%s default = %s, expected false", name, flag.DefValue)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{
		"serve", "fixtures", "e2e",
		"login", "register", "logout", "whoami",
		"list", "add", "edit", "toggle", "delete",
	}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmd_Aliases(t *testing.T) {
	for alias, name := range map[string]string{"done": "toggle", "rm": "delete"} {
		cmd, _, err := rootCmd.Find([]string{alias})
		if err != nil {
			t.Errorf("alias %q: %v", alias, err)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q resolves to %s, expected %s", alias, cmd.Name(), name)
		}
	}
}

func TestRootCmd_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Errorf("rootCmd.Execute() returned error: %v", err)
	}

	if buf.Len() == 0 {
		t.Error("Help output should not be empty")
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		l, err := newLogger(debug)
		if err != nil {
			t.Fatalf("newLogger(%v) error = %v", debug, err)
		}
		if l == nil {
			t.Fatalf("newLogger(%v) returned nil", debug)
		}
	}
}
