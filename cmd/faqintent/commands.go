package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
	"github.com/jonwraymond/faqintent/server"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) matchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "match QUERY...",
		Short: "Print the intent matched by a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			query := strings.Join(args, " ")
			res := b.Matcher().Match(query)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"query":   query,
					"matched": res.Matched(),
					"intent":  res.ID(),
					"score":   res.Score,
				})
			}
			if !res.Matched() {
				_, err := fmt.Fprintln(out, "no match")
				return err
			}
			_, err = fmt.Fprintf(out, "%s\t%.4f\n", res.ID(), res.Score)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) explainCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "explain QUERY...",
		Short: "Print every intent's score breakdown for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			query := strings.Join(args, " ")
			m := b.Matcher()
			scores := m.Explain(query)
			res := m.Match(query)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"query":  query,
					"intent": res.ID(),
					"scores": scores,
				})
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INTENT\tUTTERANCE\tKEYWORD\tBOOST\tMULTI\tCOMBINED")
			for _, s := range scores {
				marker := ""
				if s.IntentID == res.ID() {
					marker = " *"
				}
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f%s\n",
					s.IntentID, s.Utterance, s.Keyword, s.Boost, s.MultiKeyword, s.Combined, marker)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !res.Matched() {
				_, err := fmt.Fprintf(out, "no match (threshold %.2f)\n", m.Threshold())
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask",
		Short: "Chat with the FAQ bot on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			printReply(out, b.Intro())

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					return nil
				}

				reply, err := b.Ask(cmd.Context(), line)
				if errors.Is(err, bot.ErrEmptyQuery) {
					continue
				}
				if err != nil {
					return err
				}
				printReply(out, reply)
			}
		},
	}
}

func printReply(w io.Writer, r bot.Reply) {
	fmt.Fprintln(w, r.Text)
	for _, l := range r.Links {
		fmt.Fprintf(w, "  - %s: %s\n", l.Label, l.Href)
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  * %s (%s)\n", s.Label, s.ID)
	}
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Match one query per line of FILE (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var queries []string
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				if q := strings.TrimSpace(scanner.Text()); q != "" {
					queries = append(queries, q)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			results, err := b.Matcher().MatchAll(cmd.Context(), queries)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			matched := 0
			for i, res := range results {
				id := "-"
				if res.Matched() {
					id = res.ID()
					matched++
				}
				fmt.Fprintf(tw, "%s\t%s\t%.4f\n", queries[i], id, res.Score)
			}
			a.logger.Info("batch complete", zap.Int("queries", len(queries)), zap.Int("matched", matched))
			return tw.Flush()
		},
	}
}

func (a *app) intentsCmd() *cobra.Command {
	var (
		detail string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "intents",
		Short: "List catalog intents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.cfg.Source()
			if err != nil {
				return err
			}
			catalog, err := src.Catalog()
			if err != nil {
				return err
			}

			descs := make([]intent.Description, 0, catalog.Len())
			for _, it := range catalog.Intents() {
				d, err := intent.Describe(it, intent.DetailLevel(detail))
				if err != nil {
					return err
				}
				descs = append(descs, d)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, descs)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, d := range descs {
				fmt.Fprintf(tw, "%s\t%s\n", d.ID, d.Title)
				if len(d.Utterances) > 0 {
					fmt.Fprintf(tw, "\tutterances: %s\n", strings.Join(d.Utterances, "; "))
					fmt.Fprintf(tw, "\ttags: %s\n", strings.Join(d.Tags, ", "))
				}
				if d.Answer != "" {
					fmt.Fprintf(tw, "\tanswer: %s\n", d.Answer)
				}
			}
			if dead := catalog.Dead(); len(dead) > 0 {
				a.logger.Warn("catalog has unreachable intents", zap.Strings("intents", dead))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&detail, "detail", "summary", "detail level: summary, utterances, full")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) newServer(b *bot.Bot) (*server.Server, error) {
	return server.New(b, server.Config{
		ServerInfo: server.ServerInfo{Name: "faqintent", Version: version},
		Logger:     a.logger,
	})
}
