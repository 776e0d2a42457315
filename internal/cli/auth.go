package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/ui"
)

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doAuthLogin(opt Options) int {
	in := opt.Stdin
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(ui.Stdout(), "Paste your token: ")
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		err := sc.Err()
		if err == nil {
			err = fmt.Errorf("no input")
		}
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(sc.Text()); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	ti, err := auth.GetToken()
	if err != nil {
		ui.Fail("auth: " + err.Error())
		return 1
	}
	out := ui.Stdout()
	if ti == nil {
		fmt.Fprintln(out, ui.C(ui.Current().Muted, "not logged in"))
		fmt.Fprintln(out, "Run: tada auth login")
		return 0
	}
	fmt.Fprintf(out, "source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
		if ti.Expired(time.Now()) {
			ui.Hint("token has expired; run `tada auth login`")
		}
	} else {
		fmt.Fprintln(out, "expires: (unknown)")
	}
	fmt.Fprintln(out, "env override: "+auth.EnvToken)
	return 0
}

// whoami decodes JWT claims locally; opaque tokens print basic info.
func doAuthWhoAmI() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		ui.Fail("not logged in. Run: tada auth login")
		return 2
	}
	out := ui.Stdout()
	if claims, ok := auth.Claims(ti.Token); ok {
		b, err := json.MarshalIndent(claims, "", "  ")
		if err == nil {
			fmt.Fprintln(out, "JWT payload:")
			fmt.Fprintln(out, string(b))
			return 0
		}
	}
	fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(out, "source:", ti.Source)
	return 0
}
