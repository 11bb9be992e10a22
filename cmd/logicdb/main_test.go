package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	logicdb "github.com/vilterp/logicdb/pkg"
	"github.com/vilterp/logicdb/pkg/parse"
)

const sampleKB = `L(a,b)
L(b,c)
M(x,y) <- L(x,y)
A(x) <- B(x)
B(x) <- A(x)
`

func writeFile(t *testing.T, dir string, name string, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func runRoot(args ...string) (string, error) {
	cmd := rootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAskCommand(t *testing.T) {
	dir := t.TempDir()
	kbPath := writeFile(t, dir, "sample.kb", sampleKB)

	cases := []struct {
		args []string
		out  string
		code int
	}{
		{[]string{kbPath, "M(?,?)"}, "Answer: [M(a,b), M(b,c)]\n", exitOK},
		{[]string{kbPath, "L(z,?)"}, "Answer: []\n", exitOK},
		{[]string{"--parallel", kbPath, "M(a,?)"}, "Answer: [M(a,b)]\n", exitOK},
		{[]string{kbPath}, "", exitBadArguments},
		{[]string{kbPath, "M(?,?)", "extra"}, "", exitBadArguments},
		{[]string{"--max-depth", "0", kbPath, "M(?,?)"}, "", exitBadArguments},
		{[]string{kbPath, "M(?,"}, "", exitUnanswerable},
		{[]string{kbPath, "A(?)"}, "", exitUnanswerable},
		{[]string{kbPath, "L(?)"}, "", exitUnanswerable},
		{[]string{writeFile(t, dir, "bad.kb", "L(a,b)\nL(a,\n"), "L(?,?)"}, "", exitBadKnowledgeBase},
		{[]string{writeFile(t, dir, "arity.kb", "L(a,b)\nL(a)\n"), "L(?,?)"}, "", exitBadKnowledgeBase},
		{[]string{filepath.Join(dir, "missing.kb"), "L(?,?)"}, "", exitIO},
		{[]string{writeFile(t, dir, "long.kb", "L(" + strings.Repeat("a", parse.MaxLineSize) + ")\n"), "L(?)"}, "", exitBadKnowledgeBase},
	}

	for idx, testCase := range cases {
		out, err := runRoot(testCase.args...)
		if code := exitCode(err); code != testCase.code {
			t.Fatalf("case %d: expected exit %d; got %d (%v)", idx, testCase.code, code, err)
		}
		if out != testCase.out {
			t.Fatalf("case %d: expected output %q; got %q", idx, testCase.out, out)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	kbPath := writeFile(t, dir, "chain.kb", "PA(x) <- PB(x)\nPB(x) <- PC(x)\nPC(a)\n")
	cfgPath := writeFile(t, dir, "logicdb.yaml", "log_level: error\nsolver:\n  max_depth: 2\n")

	_, err := runRoot("--config", cfgPath, kbPath, "PA(?)")
	require.Equal(t, exitUnanswerable, exitCode(err))
	require.Equal(t, logicdb.KindTooDeep, logicdb.ErrorKind(err.(*exitError).err))

	// Flags win over the file.
	out, err := runRoot("--config", cfgPath, "--max-depth", "3", kbPath, "PA(?)")
	require.NoError(t, err)
	require.Equal(t, "Answer: [PA(a)]\n", out)

	_, err = runRoot("--config", filepath.Join(dir, "missing.yaml"), kbPath, "PA(?)")
	require.Equal(t, exitBadArguments, exitCode(err))
}

func TestSnapshotCommand(t *testing.T) {
	dir := t.TempDir()
	kbPath := writeFile(t, dir, "sample.kb", sampleKB)
	snapPath := filepath.Join(dir, "sample.db")

	out, err := runRoot("snapshot", kbPath, snapPath)
	require.NoError(t, err)
	require.Equal(t, "wrote 2 facts and 3 rules to "+snapPath+"\n", out)

	out, err = runRoot(snapPath, "M(?,c)")
	require.NoError(t, err)
	require.Equal(t, "Answer: [M(b,c)]\n", out)

	_, err = runRoot("snapshot", kbPath)
	require.Equal(t, exitBadArguments, exitCode(err))
}

func TestShellLines(t *testing.T) {
	ts, err := logicdb.NewTestServer(sampleKB, logicdb.Options{})
	require.NoError(t, err)
	defer ts.Close()

	out := &bytes.Buffer{}
	require.True(t, runShellLine(out, ts.Client, "  M(?,?) "))
	require.True(t, runShellLine(out, ts.Client, ""))
	require.True(t, runShellLine(out, ts.Client, "A(?)"))
	require.True(t, runShellLine(out, ts.Client, `\h`))
	require.False(t, runShellLine(out, ts.Client, `\q`))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "Answer: [M(a,b), M(b,c)]", lines[0])
	require.Equal(t, "error: cyclic rule dependency: A -> B -> A (cycle)", lines[1])
	require.Contains(t, lines[2], "ask a question")
}
