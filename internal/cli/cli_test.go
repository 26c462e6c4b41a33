package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("FIELDHAND_GLOBAL_DATA_DIR", tmp)
	t.Setenv("FIELDHAND_GLOBAL_CONFIG_DIR", tmp)
	t.Setenv("FIELDHAND_DATABASE_PATH", filepath.Join(tmp, "fieldhand.db"))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd("test")
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestSendAndList(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "send", "--user", "worker-1", "farmer-greta", "hello from the field")
	require.NoError(t, err)
	require.NotEmpty(t, out, "send should print the message ID")

	out, err = runCLI(t, "list", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "farmer-greta")
	require.Contains(t, out, "hello from the field")

	// The counterpart sees the same conversation.
	out, err = runCLI(t, "list", "--user", "farmer-greta")
	require.NoError(t, err)
	require.Contains(t, out, "worker-1")
}

func TestSendRequiresUser(t *testing.T) {
	setupEnv(t)
	t.Setenv("HOME", t.TempDir()) // no saved session

	_, err := runCLI(t, "send", "farmer-greta", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no user selected")
}

func TestSeedCreatesNamedConversations(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "seed", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "seeded 3 conversations")

	out, err = runCLI(t, "list", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "Greta Olsen")
	require.Contains(t, out, "Jon Berg")
	require.Contains(t, out, "Ida Strand")

	// Seeding twice must not duplicate conversations.
	out, err = runCLI(t, "seed", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "seeded 3 conversations")
}

func TestProfileSetAndShow(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "profile", "set", "--user", "worker-1", "--name", "Kari Moen")
	require.NoError(t, err)

	out, err := runCLI(t, "profile", "show", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "Kari Moen")
}

func TestProfileShowUnknownUser(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "profile", "show", "--user", "worker-1", "ghost-9")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no profile")
}

func TestWhoamiWithUserFlag(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "whoami", "--user", "worker-1")
	require.NoError(t, err)
	require.Contains(t, out, "worker-1")
}

func TestTableAlignment(t *testing.T) {
	buf := &bytes.Buffer{}
	err := writeTable(buf, []string{"ID", "NAME"}, [][]string{
		{"c1", "Greta"},
		{"conv-2", "Jon"},
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "ID      NAME")
	require.Contains(t, buf.String(), "conv-2  Jon")
}
