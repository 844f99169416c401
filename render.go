package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/3leaps/assetrank/internal/sidefile"
	"github.com/3leaps/assetrank/pkg/resolve"
)

// report is the document emitted by --format json and yaml.
type report struct {
	Source      string                 `json:"source" yaml:"source"`
	Release     string                 `json:"release,omitempty" yaml:"release,omitempty"`
	Title       string                 `json:"title,omitempty" yaml:"title,omitempty"`
	Runtime     resolve.RuntimeContext `json:"runtime" yaml:"runtime"`
	Candidates  []resolve.Candidate    `json:"candidates" yaml:"candidates"`
	Recommended *resolve.Artifact      `json:"recommended" yaml:"recommended"`
	Excluded    []sidefile.Info        `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

func render(w io.Writer, format string, rep *report) error {
	switch format {
	case "json":
		return renderJSON(w, rep)
	case "yaml":
		return renderYAML(w, rep)
	default:
		return renderTable(w, rep)
	}
}

func renderJSON(w io.Writer, rep *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func renderYAML(w io.Writer, rep *report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}

func renderTable(w io.Writer, rep *report) error {
	header := rep.Source
	switch {
	case rep.Title != "":
		header += " " + rep.Title
	case rep.Release != "":
		header += " " + rep.Release
	}
	fmt.Fprintf(w, "%s  (runtime: %s)\n\n", header, rep.Runtime)

	if len(rep.Candidates) == 0 {
		fmt.Fprintln(w, "no installable artifacts")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tSCORE\tPLATFORM\tARCH\tSIZE\tFLAGS\tNAME")
		for i, c := range rep.Candidates {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1, c.Score, labelOr(resolve.PlatformLabel(c.Platform)), labelOr(resolve.ArchLabel(c.Arch)),
				humanize.Bytes(uint64(max(c.Artifact.SizeBytes, 0))), candidateFlags(c), c.Artifact.Name)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	if rep.Recommended != nil {
		fmt.Fprintf(w, "Recommended: %s\n", rep.Recommended.Name)
		if rep.Recommended.DownloadURL != "" {
			fmt.Fprintf(w, "  %s\n", rep.Recommended.DownloadURL)
		}
	} else {
		fmt.Fprintf(w, "No recommendation for %s\n", rep.Runtime)
	}

	if len(rep.Excluded) > 0 {
		fmt.Fprintln(w, "\nExcluded side-files:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, info := range rep.Excluded {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", info.Name, info.Kind, describeSideFile(info))
		}
		return tw.Flush()
	}
	return nil
}

func labelOr(label string) string {
	if label == "" {
		return "-"
	}
	return label
}

func candidateFlags(c resolve.Candidate) string {
	var flags []string
	if c.Recommended {
		flags = append(flags, "recommended")
	}
	if c.Fallback {
		flags = append(flags, "fallback")
	}
	if c.Score == 0 {
		flags = append(flags, "rejected")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func describeSideFile(info sidefile.Info) string {
	parts := make([]string, 0, 3)
	if info.Detail != "" {
		parts = append(parts, info.Detail)
	}
	if info.Target != "" {
		parts = append(parts, "for "+info.Target)
	}
	if info.Covers != "" {
		covers := "over " + info.Covers
		if info.Algorithm != "" {
			covers += " (" + info.Algorithm + ")"
		}
		parts = append(parts, covers)
	}
	return strings.Join(parts, " ")
}
