package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jmylchreest/flashui/internal/config"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved CSS theme.
type Theme struct {
	Name      string    // Theme name (without .css extension)
	Path      string    // Full path to the CSS file (empty for bundled)
	CSS       string    // The CSS content with imports inlined
	ModTime   time.Time // Last modification time
	IsBundled bool      // True if the CSS came from the embedded set
}

// NewTheme loads a CSS file. @import statements are resolved and inlined.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %s: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat theme %s: %w", name, err)
	}

	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     ProcessImports(string(css), filepath.Dir(path), nil),
		ModTime: info.ModTime(),
	}, nil
}

// NewBundledTheme returns an embedded theme with imports inlined.
func NewBundledTheme(name string) (*Theme, bool) {
	css, found := GetEmbeddedTheme(name)
	if !found {
		return nil, false
	}
	return &Theme{
		Name:      name,
		CSS:       ProcessImports(css, "", nil),
		IsBundled: true,
	}, true
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, then against the embedded
// partials and themes. The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		importPath := submatch[1]
		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		importedCSS, err := os.ReadFile(fullPath)
		if err != nil {
			baseName := filepath.Base(importPath)
			if strings.HasPrefix(baseName, "_") {
				if embeddedCSS, found := GetEmbeddedPartial(baseName); found {
					return "/* imported (embedded): " + importPath + " */\n" + embeddedCSS
				}
			}
			if embeddedCSS, found := GetEmbeddedTheme(strings.TrimSuffix(baseName, ".css")); found {
				return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(embeddedCSS, "", seen)
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		processed := ProcessImports(string(importedCSS), filepath.Dir(fullPath), seen)
		return "/* imported: " + importPath + " */\n" + processed
	})
}

// Reload re-reads a user theme from disk. It reports whether the resolved
// CSS changed. Bundled themes never change.
func (t *Theme) Reload() (bool, error) {
	if t.IsBundled {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, fmt.Errorf("failed to stat theme %s: %w", t.Name, err)
	}

	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read theme %s: %w", t.Name, err)
	}

	processed := ProcessImports(string(css), filepath.Dir(t.Path), nil)
	changed := processed != t.CSS
	t.CSS = processed
	t.ModTime = info.ModTime()
	return changed, nil
}

// TransitionCSS returns the rule that fades flash messages over d. It is
// appended to every theme so the visual fade and the host's exit timer agree.
func TransitionCSS(d time.Duration) string {
	if d <= 0 {
		return ".flash-message { transition: none; }\n"
	}
	return fmt.Sprintf(".flash-message { transition: opacity %dms ease-in-out; }\n", d.Milliseconds())
}

// Stylesheet joins theme CSS with the transition rule.
func Stylesheet(css string, transition time.Duration) string {
	var sb strings.Builder
	sb.WriteString(css)
	if !strings.HasSuffix(css, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n/* flashui timing */\n")
	sb.WriteString(TransitionCSS(transition))
	return sb.String()
}

// ThemesDir returns the user's themes directory.
func ThemesDir() (string, error) {
	dir := config.ConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return filepath.Join(dir, "themes"), nil
}

// Resolve finds a theme by name. User themes in dir shadow bundled ones.
// If the name cannot be loaded, the default bundled theme is returned along
// with an error describing why.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	var userErr error
	if dir != "" {
		path := filepath.Join(dir, name+".css")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				return t, nil
			}
			userErr = err
		}
	}

	if t, found := NewBundledTheme(name); found {
		return t, userErr
	}

	t, _ := NewBundledTheme(DefaultThemeName)
	if userErr != nil {
		return t, userErr
	}
	return t, fmt.Errorf("theme %q not found, using %s", name, DefaultThemeName)
}

// Info describes an available theme.
type Info struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailable lists bundled themes followed by user themes in dir that do
// not shadow a bundled name.
func ListAvailable(dir string) ([]Info, error) {
	seen := make(map[string]bool)
	var themes []Info

	for _, name := range ListEmbeddedThemes() {
		seen[name] = true
		themes = append(themes, Info{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".css" || strings.HasPrefix(name, "_") {
			continue
		}
		themeName := strings.TrimSuffix(name, ".css")
		if seen[themeName] {
			continue
		}
		seen[themeName] = true
		themes = append(themes, Info{Name: themeName, Path: filepath.Join(dir, name)})
	}

	return themes, nil
}
