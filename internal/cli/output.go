package cli

import (
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/policy"
	"github.com/fatih/color"
)

func (a *App) success(format string, args ...any) {
	fmt.Fprintln(a.out, color.GreenString("✓")+" "+fmt.Sprintf(format, args...))
}

func (a *App) failure(format string, args ...any) {
	fmt.Fprintln(a.out, color.RedString("✗")+" "+fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintln(a.out, color.YellowString("!")+" "+fmt.Sprintf(format, args...))
}

func (a *App) hint(format string, args ...any) {
	fmt.Fprintln(a.out, color.CyanString("→")+" "+fmt.Sprintf(format, args...))
}

func (a *App) feedback(ev policy.Evaluation) {
	if ev.Strong {
		a.success("%s", ev.Feedback())
		return
	}
	a.warn("%s", ev.Feedback())
}

func (a *App) generated(g policy.Generated) {
	fmt.Fprintln(a.out, "Your generated password is: "+color.New(color.Bold).Sprint(g.Password))
	switch {
	case g.Fallback:
		a.warn("No candidate passed every check; this one was not screened against the username.")
	case g.Relaxed:
		a.warn("This password resembles the username more than usual.")
	}
}
