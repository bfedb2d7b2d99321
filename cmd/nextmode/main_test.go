package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/and161185/nextmode/internal/config"
	"github.com/and161185/nextmode/internal/errs"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{config.EnvStore, config.EnvDSN, config.EnvNamespace, config.EnvHashPasscodes, config.EnvDev} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "nm.db")
}

type cli struct {
	t    *testing.T
	dsn  string
	user string
	code string
}

func (c cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	full := append([]string{"-store", "sqlite", "-dsn", c.dsn, "-u", c.user, "-p", c.code}, args...)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c cli) ok(v any, args ...string) {
	c.t.Helper()
	code, out, errOut := c.run(args...)
	if code != exitOK {
		c.t.Fatalf("%v: exit=%d stderr=%s", args, code, errOut)
	}
	if v != nil {
		if err := json.Unmarshal([]byte(out), v); err != nil {
			c.t.Fatalf("%v: bad json %q: %v", args, out, err)
		}
	}
}

func Test_version(t *testing.T) {
	var out bytes.Buffer
	if code := run(context.Background(), []string{"version"}, &out, &bytes.Buffer{}); code != exitOK {
		t.Fatalf("exit=%d", code)
	}
	if !strings.HasPrefix(out.String(), "nextmode dev") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func Test_noCommand(t *testing.T) {
	var errOut bytes.Buffer
	if code := run(context.Background(), nil, &bytes.Buffer{}, &errOut); code != exitValidation {
		t.Fatalf("exit=%d", code)
	}
	for _, want := range []string{
		"Usage:",
		"Categories: Life, Studies, Future, Discipline",
		"Efforts:    Low, Medium, High",
		`Reasons:    "Not a priority", "Lack of time", "Poorly defined"`,
	} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("usage lacks %q: %s", want, errOut.String())
		}
	}
}

func Test_exitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{fmt.Errorf("x: %w", errs.ErrValidation), exitValidation},
		{errs.ErrInvalidTransition, exitValidation},
		{errs.ErrUnauthorized, exitAuth},
		{fmt.Errorf("goal: %w", errs.ErrNotFound), exitNotFound},
		{errors.New("disk"), exitFailure},
	}
	for _, c := range cases {
		if got := exitCode(c.err); got != c.want {
			t.Fatalf("exitCode(%v)=%d, want %d", c.err, got, c.want)
		}
	}
}

func Test_fullFlow(t *testing.T) {
	c := cli{t: t, dsn: isolateEnv(t), user: "neo", code: "0420"}

	var login loginResult
	c.ok(&login, "login")
	if login.User.Username != "neo" || login.User.EvolutionScore != 0 || login.ShowWelcome {
		t.Fatalf("unexpected login %+v", login)
	}

	var added addResult
	c.ok(&added, "add", "-title", "Exam", "-category", "Studies", "-effort", "High", "-deadline", "2026-12-01")
	if added.Goal.Status != "Active" || added.Goal.Points != 30 || !added.ShowWelcome {
		t.Fatalf("unexpected add %+v", added)
	}
	id := added.Goal.ID

	var user userView
	c.ok(&user, "welcome")
	if !user.HasSeenWelcome {
		t.Fatalf("welcome not recorded")
	}

	var edited goalView
	c.ok(&edited, "edit", "-id", id, "-title", "Final exam", "-deadline", "")
	if edited.Title != "Final exam" || edited.Deadline != "" || edited.Effort != "High" {
		t.Fatalf("unexpected edit %+v", edited)
	}

	var done completeResult
	c.ok(&done, "complete", "-id", id)
	if done.User.EvolutionScore != 30 || done.Goal.Status != "Completed" || done.Goal.CompletedAt == "" {
		t.Fatalf("unexpected complete %+v", done)
	}
	if code, _, _ := c.run("complete", "-id", id); code != exitValidation {
		t.Fatalf("second complete exit=%d", code)
	}

	var second addResult
	c.ok(&second, "add", "-title", "Move", "-category", "Future", "-effort", "Low")
	var ended goalView
	c.ok(&ended, "end", "-id", second.Goal.ID, "-reason", "Lack of time")
	if ended.Status != "Ended" || ended.DeletionReason != "Lack of time" {
		t.Fatalf("unexpected end %+v", ended)
	}

	var all, active, hist []goalView
	c.ok(&all, "list")
	c.ok(&active, "list", "-active")
	c.ok(&hist, "history")
	if len(all) != 2 || len(active) != 0 || len(hist) != 2 {
		t.Fatalf("list=%d active=%d history=%d", len(all), len(active), len(hist))
	}

	var st statsResult
	c.ok(&st, "stats")
	if st.Total != 2 || st.Completed != 1 || st.Ended != 1 || st.Rate != 50 || st.EvolutionScore != 30 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func Test_errorsMapToExitCodes(t *testing.T) {
	c := cli{t: t, dsn: isolateEnv(t), user: "neo", code: "1"}
	c.ok(nil, "login")

	wrong := c
	wrong.code = "2"
	if code, _, _ := wrong.run("login"); code != exitAuth {
		t.Fatalf("wrong passcode exit=%d", code)
	}
	long := c
	long.code = "12345"
	if code, _, _ := long.run("login"); code != exitValidation {
		t.Fatalf("long passcode exit=%d", code)
	}
	if code, _, _ := c.run("complete", "-id", "missing"); code != exitNotFound {
		t.Fatalf("missing goal exit=%d", code)
	}
	if code, _, _ := c.run("complete"); code != exitValidation {
		t.Fatalf("missing -id exit=%d", code)
	}
	if code, _, _ := c.run("add", "-title", "x", "-category", "Work", "-effort", "Low"); code != exitValidation {
		t.Fatalf("bad category exit=%d", code)
	}
	if code, _, _ := c.run("end", "-id", "x", "-reason", "Bored"); code != exitValidation {
		t.Fatalf("bad reason exit=%d", code)
	}
	if code, _, _ := c.run("dance"); code != exitValidation {
		t.Fatalf("unknown command exit=%d", code)
	}
}

func Test_hashedPasscodes(t *testing.T) {
	dsn := isolateEnv(t)
	c := cli{t: t, dsn: dsn, user: "trinity", code: "7"}

	var out bytes.Buffer
	args := []string{"-hash", "-store", "sqlite", "-dsn", dsn, "-u", "trinity", "-p", "7", "login"}
	if code := run(context.Background(), args, &out, &bytes.Buffer{}); code != exitOK {
		t.Fatalf("hashed login exit=%d", code)
	}
	// the plain scheme compares verbatim, so a sealed record rejects it
	if code, _, _ := c.run("login"); code != exitAuth {
		t.Fatalf("plain scheme must not accept a sealed record, exit=%d", code)
	}
	args[len(args)-1] = "stats"
	if code := run(context.Background(), args, &out, &bytes.Buffer{}); code != exitOK {
		t.Fatalf("hashed stats exit=%d", code)
	}
}

func Test_badStoreFlag(t *testing.T) {
	isolateEnv(t)
	args := []string{"-store", "redis", "-u", "neo", "-p", "1", "login"}
	if code := run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{}); code != exitFailure {
		t.Fatalf("exit=%d", code)
	}
}

func Test_postgresNeedsDSN(t *testing.T) {
	isolateEnv(t)
	var errOut bytes.Buffer
	args := []string{"-store", "postgres", "-u", "neo", "-p", "1", "login"}
	if code := run(context.Background(), args, &bytes.Buffer{}, &errOut); code != exitFailure {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(errOut.String(), "dsn is required") {
		t.Fatalf("unexpected error output %q", errOut.String())
	}
}
