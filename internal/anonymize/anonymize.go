// Package anonymize rewrites Verilog module names to structurally generated
// placeholders so module identifiers leak nothing to a language model, while
// keeping the source valid and the instantiation topology intact.
package anonymize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// moduleDeclRE matches a module declaration at line start, tolerating an
// optional parameter block between the name and the port list.
var moduleDeclRE = regexp.MustCompile(`(?ms)(^module\s+)(\w+)((?:\s*#\s*\(.*?\))?\s*(?:\(|;))`)

// ModuleNames lists the modules declared in src, in declaration order.
func ModuleNames(src string) []string {
	matches := moduleDeclRE.FindAllStringSubmatch(src, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[2])
	}
	return names
}

// Modules renames every declared module to anonymized_module_<i> and rewrites
// all whole-word uses (declarations and instantiation sites) consistently.
// The returned mapping is anonymized name -> original name, the direction
// stored in rtl.json.
func Modules(src string) (string, map[string]string) {
	mapping := make(map[string]string)
	counter := 0

	anon := moduleDeclRE.ReplaceAllStringFunc(src, func(match string) string {
		sub := moduleDeclRE.FindStringSubmatch(match)
		anonymized := fmt.Sprintf("anonymized_module_%d", counter)
		mapping[anonymized] = sub[2]
		counter++
		return sub[1] + anonymized + sub[3]
	})

	for anonymized, original := range mapping {
		wordRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(original) + `\b`)
		anon = wordRE.ReplaceAllString(anon, anonymized)
	}

	return anon, mapping
}

// Invert flips a name mapping; applying the inverted mapping to the
// anonymized source recovers the original module graph.
func Invert(mapping map[string]string) map[string]string {
	inv := make(map[string]string, len(mapping))
	for k, v := range mapping {
		inv[v] = k
	}
	return inv
}

// Apply rewrites every whole-word occurrence of a mapping key with its value.
func Apply(src string, mapping map[string]string) string {
	for from, to := range mapping {
		wordRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`)
		src = wordRE.ReplaceAllString(src, to)
	}
	return src
}

// NetlistFiles anonymizes every *.v file in inDir into outDir. Netlist module
// declarations always carry a port list, hence the tighter pattern.
func NetlistFiles(inDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".v") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(inDir, entry.Name()))
		if err != nil {
			return err
		}
		anon, _ := Modules(string(src))
		if err := os.WriteFile(filepath.Join(outDir, entry.Name()), []byte(anon), 0644); err != nil {
			return err
		}
	}
	return nil
}
