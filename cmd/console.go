package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
)

// Lines of template shown on each side of a failing line.
const excerptRadius = 7

//nolint:gochecknoglobals // console palette
var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func printOK(format string, args ...interface{}) {
	fmt.Println(okStyle.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...interface{}) {
	fmt.Println(warnStyle.Render("Warning:") + " " + fmt.Sprintf(format, args...))
}

// printFailure shows a template error with the surrounding template lines.
func printFailure(tmpl *template.Template, err error) {
	fmt.Println(errStyle.Render("Error!") + " " + err.Error())

	var tmplErr *template.Error
	if tmpl == nil || !errors.As(err, &tmplErr) || tmplErr.LineNo < 1 {
		return
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("Portion of template, with line numbers:"))
	for _, line := range strings.Split(strings.TrimSuffix(tmpl.Excerpt(tmplErr.LineNo, excerptRadius), "\n"), "\n") {
		if strings.HasPrefix(line, ">") {
			fmt.Println(errStyle.Render(line))
			continue
		}
		fmt.Println(dimStyle.Render(line))
	}
}
