package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

func TestEnvFileArg(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ".env"},
		{[]string{"seed"}, ".env"},
		{[]string{"--env-file", "prod.env", "seed"}, "prod.env"},
		{[]string{"--env-file=/etc/filmyfly.env", "sitemap"}, "/etc/filmyfly.env"},
		{[]string{"import", "--", "--env-file=x"}, ".env"},
	}
	for _, tc := range cases {
		if got := envFileArg(tc.args); got != tc.want {
			t.Errorf("envFileArg(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestAdminPasswordFromEnvFile(t *testing.T) {
	t.Setenv("FILMYFLY_ADMIN_PASSWORD", "")
	os.Unsetenv("FILMYFLY_ADMIN_PASSWORD")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FILMYFLY_ADMIN_PASSWORD=from-env-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	args := []string{"--env-file", path, "create-admin", "--email", "ops@filmyfly.test"}
	if err := godotenv.Load(envFileArg(args)); err != nil {
		t.Fatal(err)
	}

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("filmyctl"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cli.CreateAdmin.Password != "from-env-file" {
		t.Fatalf("password = %q", cli.CreateAdmin.Password)
	}
}
