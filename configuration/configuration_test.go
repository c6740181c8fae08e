package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type options struct {
	Algorithm string   `cfg:"algorithm"`
	Limit     int      `cfg:"step_limit"`
	Color     bool     `yaml:"color"`
	Patterns  []string `cfg:"patterns"`
	Ignored   string   `cfg:"-"`
	hidden    string
}

func TestUnmarshal(t *testing.T) {
	t.Setenv(`TEST_STEPSEARCH_STEP_LIMIT`, `12`)
	cf := Overlay{
		Environment(`TEST_STEPSEARCH_`),
		Map{`algorithm`: {`kmp`}, `color`: {`off`}},
		Map{`algorithm`: {`boyer-moore`}, `patterns`: {`a`, `b`}, `step_limit`: {`3`}},
	}
	opts := options{Algorithm: `bm`, Color: true, Ignored: `kept`}
	if err := Unmarshal(&opts, cf); err != nil {
		t.Fatal(err)
	}
	if opts.Algorithm != `kmp` || opts.Limit != 12 || opts.Color || opts.Ignored != `kept` {
		t.Errorf(`got %+v`, opts)
	}
	if strings.Join(opts.Patterns, `,`) != `a,b` {
		t.Errorf(`got patterns %q`, opts.Patterns)
	}
	if err := Unmarshal(opts, cf); err == nil {
		t.Errorf(`unmarshal into a struct value did not fail`)
	}
}

func TestGet(t *testing.T) {
	for _, test := range []struct {
		Name  string
		Value []string
		OK    bool
	}{
		{"int", []string{`7`}, true},
		{"notInt", []string{`seven`}, false},
		{"many", []string{`1`, `2`}, false},
		{"missing", nil, true},
	} {
		t.Run(test.Name, func(t *testing.T) {
			n := 1
			err := Get(&n, Map{`n`: test.Value}, `n`)
			if (err == nil) != test.OK {
				t.Errorf(`got error %v`, err)
			}
			if test.Value == nil && n != 1 {
				t.Errorf(`missing item changed the value to %d`, n)
			}
		})
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, `stepsearch.yaml`)
	err := os.WriteFile(path, []byte("algorithm: kmp\nstep_limit: 40\npatterns: [ab, cd]\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	cf, err := File(path, false)
	if err != nil {
		t.Fatal(err)
	}
	var opts options
	if err := Unmarshal(&opts, cf); err != nil {
		t.Fatal(err)
	}
	if opts.Algorithm != `kmp` || opts.Limit != 40 || len(opts.Patterns) != 2 {
		t.Errorf(`got %+v`, opts)
	}

	if _, err := File(filepath.Join(dir, `missing.yaml`), false); err == nil {
		t.Errorf(`missing file did not fail`)
	}
	if cf, err := File(filepath.Join(dir, `missing.yaml`), true); err != nil || len(cf) != 0 {
		t.Errorf(`optional missing file: %v %v`, cf, err)
	}

	bad := filepath.Join(dir, `bad.yaml`)
	_ = os.WriteFile(bad, []byte("- a\n- b\n"), 0644)
	if _, err := File(bad, false); err == nil {
		t.Errorf(`a YAML sequence was accepted as a configuration`)
	}
}
