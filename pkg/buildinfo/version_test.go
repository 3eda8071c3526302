package buildinfo

import (
	"strings"
	"testing"
)

func TestGetPrefersLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := Get().Version; got != "v1.2.3" {
		t.Errorf("Version = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: ") {
		t.Errorf("Template() = %q", tmpl)
	}
	for _, want := range []string{"commit: ", "built: "} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() missing %q", want)
		}
	}
}
