package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// corpusEntry is one resolution case. Exactly one of Manifest or Repo is set;
// Repo entries hit the live GitHub API and only run with --include-live.
type corpusEntry struct {
	Name     string `json:"name"`
	Manifest string `json:"manifest"`
	Repo     string `json:"repo"`
	Tag      string `json:"tag"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Expect   string `json:"expect"` // artifact name; empty means no recommendation
	Note     string `json:"note"`
}

type result struct {
	Name     string `json:"name"`
	Runtime  string `json:"runtime"`
	Expect   string `json:"expect"`
	Got      string `json:"got"`
	ExitCode int    `json:"exitCode"`
	Status   string `json:"status"`
	Note     string `json:"note,omitempty"`
	Output   string `json:"output,omitempty"`
}

func main() {
	manifestPath := flag.String("corpus", "testdata/corpus.json", "path to corpus file")
	binFlag := flag.String("assetrank-bin", "", "path to assetrank binary to run")
	includeLive := flag.Bool("include-live", false, "include entries that query the GitHub API")
	jsonOut := flag.Bool("json", false, "print results as JSON")
	flag.Parse()

	corpus := firstSet(*manifestPath, os.Getenv("CORPUS_FILE"))
	bin := firstSet(*binFlag, os.Getenv("CORPUS_ASSETRANK_BIN"), "assetrank")

	entries, err := loadCorpus(corpus)
	if err != nil {
		fatalf("load corpus: %v", err)
	}
	if err := validateEntries(entries); err != nil {
		fatalf("corpus validation failed: %v", err)
	}

	var results []result
	var failures int

	for _, e := range entries {
		if e.Repo != "" && !*includeLive {
			continue
		}
		res := runEntry(e, bin)
		results = append(results, res)
		if res.Status != "pass" {
			failures++
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fatalf("encode results: %v", err)
		}
	} else {
		for _, r := range results {
			fmt.Printf("[%s] %s runtime=%s expect=%q got=%q exit=%d", strings.ToUpper(r.Status), r.Name, r.Runtime, r.Expect, r.Got, r.ExitCode)
			if r.Note != "" {
				fmt.Printf(" note=%s", r.Note)
			}
			fmt.Println()
			if r.Status != "pass" && strings.TrimSpace(r.Output) != "" {
				fmt.Printf("  output:\n%s\n", r.Output)
			}
		}
		fmt.Printf("%d/%d passed\n", len(results)-failures, len(results))
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func runEntry(e corpusEntry, bin string) result {
	var args []string
	if e.Manifest != "" {
		args = append(args, "--manifest", e.Manifest)
	} else {
		args = append(args, "--repo", e.Repo)
		if e.Tag != "" {
			args = append(args, "--tag", e.Tag)
		}
	}
	args = append(args, "--os", e.OS, "--arch", e.Arch, "--best")

	code, stdout, stderr := runCmd(bin, args...)
	got := strings.TrimSpace(stdout)

	status := "fail"
	switch {
	case e.Expect == "" && code == 2:
		status = "pass"
	case e.Expect != "" && code == 0 && strings.HasSuffix(got, e.Expect):
		status = "pass"
	}

	return result{
		Name:     e.Name,
		Runtime:  e.OS + "/" + e.Arch,
		Expect:   e.Expect,
		Got:      got,
		ExitCode: code,
		Status:   status,
		Note:     e.Note,
		Output:   strings.TrimSpace(stdout + "\n" + stderr),
	}
}

func runCmd(bin string, args ...string) (int, string, string) {
	cmd := exec.Command(bin, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), stdout.String(), stderr.String()
		}
		return -1, stdout.String(), err.Error()
	}
	return 0, stdout.String(), stderr.String()
}

func loadCorpus(path string) ([]corpusEntry, error) {
	f, err := os.Open(path) // #nosec G304 -- test harness corpus path
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file, close error non-critical

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var entries []corpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func validateEntries(entries []corpusEntry) error {
	seen := map[string]bool{}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entry %d: name is required", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("entry %d: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true
		if (e.Manifest == "") == (e.Repo == "") {
			return fmt.Errorf("entry %d (%s): exactly one of manifest or repo is required", i, e.Name)
		}
		if strings.TrimSpace(e.OS) == "" || strings.TrimSpace(e.Arch) == "" {
			return fmt.Errorf("entry %d (%s): os and arch are required", i, e.Name)
		}
	}
	return nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
