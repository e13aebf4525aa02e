package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	exitOn   string

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if name == f.exitOn {
		return errExit
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Add(ctx context.Context) error { return f.record("add") }
func (f *fakeExec) List(ctx context.Context) error { return f.record("list") }
func (f *fakeExec) Show(ctx context.Context) error { return f.record("show") }
func (f *fakeExec) Update(ctx context.Context) error { return f.record("update") }
func (f *fakeExec) Delete(ctx context.Context) error { return f.record("delete") }
func (f *fakeExec) ChangeMaster(ctx context.Context) error { return f.record("passwd") }
func (f *fakeExec) Generate(ctx context.Context) error { return f.record("generate") }
func (f *fakeExec) Check(ctx context.Context) error { return f.record("check") }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func runFake(t *testing.T, exec *fakeExec, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	r := newLineReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, runREPL(context.Background(), exec, func() string { return "status" }, r, &out))
	return out.String()
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := &fakeExec{}
	out := runFake(t, exec,
		"help",
		"login",
		"help",
		"add",
		"l",
		"list",
		"show 123",
		"update",
		"delete",
		"passwd",
		"generate",
		"check",
		"foobar",
		"logout",
		"exit",
		"add",
	)

	assert.Equal(t, []string{
		"login", "add", "list", "list", "show", "update", "delete",
		"passwd", "generate", "check", "logout",
	}, exec.calls)
	assert.Contains(t, out, "Available commands: login, generate, check, exit")
	assert.Contains(t, out, "Available commands: add, (l)ist")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "passkeeper (status)> ")
	assert.Contains(t, out, "Goodbye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	r := newLineReader(strings.NewReader("list"))

	require.NoError(t, runREPL(context.Background(), exec, func() string { return "s" }, r, &out))
	assert.Equal(t, []string{"list"}, exec.calls)
}

func TestRunREPL_HandlerExit(t *testing.T) {
	exec := &fakeExec{exitOn: "login"}
	runFake(t, exec, "login", "list")
	assert.Equal(t, []string{"login"}, exec.calls)
}

func TestRunREPL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	var out bytes.Buffer
	err := runREPL(ctx, exec, func() string { return "s" }, newLineReader(strings.NewReader("list\n")), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.calls)
}
