package config

import (
	"log"
	"sort"
	"strings"
)

// Required maps an env var name to the value read for it.
type Required map[string]string

// Missing lists the names whose value is blank, sorted.
func (r Required) Missing() []string {
	var out []string
	for name, v := range r {
		if strings.TrimSpace(v) == "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// MustAll exits naming every missing variable at once, not just the first.
func (r Required) MustAll() {
	if missing := r.Missing(); len(missing) > 0 {
		log.Fatalf("missing required env: %s", strings.Join(missing, ", "))
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	Required{envName: string(value)}.MustAll()
}
