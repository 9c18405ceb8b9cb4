package dockerfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

//go:embed postgres.Dockerfile.tmpl
var defaultTemplate string

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	fileNamePattern   = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	versionPattern    = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// Params holds the values substituted into a Dockerfile template.
type Params struct {
	BaseImage       string
	PostgresVersion string
	DatabaseName    string
	Files           []string
	SQL             []string
	Signature       string
	Port            int
}

// Validate rejects values that would produce a broken or unsafe Dockerfile.
// Every value ends up inside shell commands, so names are restricted to a
// conservative character set.
func (p Params) Validate() error {
	if p.BaseImage == "" || strings.ContainsAny(p.BaseImage, " \t\n") {
		return fmt.Errorf("invalid base image %q", p.BaseImage)
	}
	if !versionPattern.MatchString(p.PostgresVersion) {
		return fmt.Errorf("invalid postgres version %q\nUse a major version such as 16", p.PostgresVersion)
	}
	if !identifierPattern.MatchString(p.DatabaseName) {
		return fmt.Errorf("invalid database name %q\nUse letters, digits and underscores, starting with a letter", p.DatabaseName)
	}
	seen := make(map[string]bool, len(p.Files))
	for _, file := range p.Files {
		if err := ValidateFileName(file); err != nil {
			return err
		}
		if seen[file] {
			return fmt.Errorf("data file %q is listed more than once", file)
		}
		seen[file] = true
	}
	for _, statement := range p.SQL {
		if strings.Contains(statement, "--") {
			return fmt.Errorf("invalid SQL statement %q: line comments are not supported\nMove commented SQL into a data file", statement)
		}
	}
	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("invalid port %d", p.Port)
	}
	return nil
}

// ValidateFileName rejects data file names that are not plain base names.
// Names are copied into the image and referenced from shell commands, so
// directories and shell metacharacters are not allowed.
func ValidateFileName(name string) error {
	if name == "." || name == ".." || !fileNamePattern.MatchString(name) {
		return fmt.Errorf("invalid data file name %q\nData files are referenced by base name only", name)
	}
	return nil
}

// Render renders the built-in PostgreSQL template.
func Render(params Params) ([]byte, error) {
	return RenderTemplate(defaultTemplate, params)
}

// RenderTemplate renders text as a Dockerfile template. The template may use
// the quote function to escape a value for a double-quoted shell string.
func RenderTemplate(text string, params Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := template.New("Dockerfile").
		Funcs(template.FuncMap{"quote": quote}).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Dockerfile template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, fmt.Errorf("failed to render Dockerfile template: %w", err)
	}

	return buf.Bytes(), nil
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"$", `\$`,
	"`", "\\`",
	"\n", " ",
)

// quote escapes s for use inside a double-quoted shell string. Newlines are
// folded into spaces since a Dockerfile instruction ends at the line break.
func quote(s string) string {
	return quoteReplacer.Replace(s)
}
