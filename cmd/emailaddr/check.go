package main

import (
	"bufio"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/optimode/emailaddr"
	"github.com/optimode/emailaddr/internal/config"
	"github.com/optimode/emailaddr/internal/logger"
)

type checkOutput struct {
	XMLName xml.Name            `xml:"results"`
	Valid   int                 `xml:"valid,attr"`
	Total   int                 `xml:"total,attr"`
	Results []emailaddr.Context `xml:"emailAddress"`
}

func runCheck(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	format := fs.String("format", "json", `Output format "json"|"xml"|"text"`)
	strict := fs.Bool("strict", false, "Exit with status 1 when any address is invalid")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(fs, ".")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitUsage
	}
	log := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)

	v, err := cfg.Validator.NewValidator()
	if err != nil {
		log.Error().Err(err).Msg("invalid validator configuration")
		return exitUsage
	}

	addrs := fs.Args()
	if len(addrs) == 0 {
		addrs, err = readLines(stdin)
		if err != nil {
			log.Error().Err(err).Msg("failed to read stdin")
			return exitUsage
		}
	}

	results, err := v.ValidateMany(ctx, addrs, emailaddr.ConcurrencyOptions{Workers: cfg.Validator.Workers})
	if err != nil {
		log.Error().Err(err).Msg("validation aborted")
		return exitUsage
	}

	if err := writeResults(stdout, *format, results); err != nil {
		log.Error().Err(err).Msg("failed to write results")
		return exitUsage
	}

	valid := emailaddr.ValidCount(results)
	log.Debug().Int("total", len(results)).Int("valid", valid).Msg("check complete")

	if *strict && valid != len(results) {
		return exitInvalid
	}
	return exitOK
}

// readLines returns the non-blank lines of r as read, so each result keeps
// its original source.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func writeResults(w io.Writer, format string, results []emailaddr.Context) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		for _, c := range results {
			if err := enc.Encode(c); err != nil {
				return err
			}
		}
		return nil
	case "xml":
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(checkOutput{
			Valid:   emailaddr.ValidCount(results),
			Total:   len(results),
			Results: results,
		}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case "text":
		for _, c := range results {
			status := "PASS"
			if !c.Valid {
				status = "FAIL"
			}
			line := fmt.Sprintf("%s %s", status, c.SourceEmailAddress)
			if c.Valid {
				line += " -> " + c.NormalizedEmailAddress
			}
			if c.Suggestion != "" {
				line += fmt.Sprintf(" (did you mean: %s?)", c.Suggestion)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
