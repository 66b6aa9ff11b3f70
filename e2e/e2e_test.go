//go:build e2e

package e2e_test

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// weftBin is the binary built once for all scripts.
var weftBin string

func TestMain(m *testing.M) {
	os.Exit(runWithBinary(m))
}

func runWithBinary(m *testing.M) int {
	dir, err := os.MkdirTemp("", "weft-e2e-*")
	if err != nil {
		panic(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	weftBin = filepath.Join(dir, "weft")
	//nolint:gosec // Static arguments
	build := exec.Command("go", "build",
		"-ldflags", "-X go.trai.ch/weft/internal/build.Version=e2e",
		"-o", weftBin, "./cmd/weft")
	build.Dir = ".."
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		panic("building weft: " + err.Error())
	}
	return m.Run()
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setup,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"order": cmdOrder,
		},
	})
}

// setup isolates each script: no colors, and a private home and IP cache.
func setup(env *testscript.Env) error {
	home := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(home, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", home)
	env.Setenv("WEFT_HOME", filepath.Join(home, ".weft"))
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")
	env.Setenv("PATH", filepath.Dir(weftBin)+string(os.PathListSeparator)+env.Getenv("PATH"))
	return nil
}

// cmdOrder prints "<fileset> <basename>" for every line of a blueprint file
// list, so scripts can compare build order without absolute paths.
//
//	order target/blueprint.tsv
func cmdOrder(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! order")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: order blueprint")
	}
	f, err := os.Open(ts.MkAbs(args[0]))
	ts.Check(err)
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) != 3 {
			ts.Fatalf("malformed blueprint line %q", sc.Text())
		}
		_, _ = ts.Stdout().Write([]byte(fields[0] + " " + filepath.Base(fields[2]) + "\n"))
	}
	ts.Check(sc.Err())
}
