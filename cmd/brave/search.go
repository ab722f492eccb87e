package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/config"
)

type searchCmd struct {
	Queries []string `arg:"positional,required" help:"search queries, run concurrently"`

	Count         int    `arg:"--count,-n" help:"number of results per query (1-20)"`
	Offset        int    `arg:"--offset" help:"page offset (0-9)"`
	Country       string `arg:"--country" help:"two letter country code"`
	SafeSearch    string `arg:"--safesearch" help:"off, moderate or strict"`
	Freshness     string `arg:"--freshness" help:"pd, pw, pm, py or YYYY-MM-DDtoYYYY-MM-DD"`
	ExtraSnippets bool   `arg:"--extra-snippets" help:"request extra snippets"`
	Summary       bool   `arg:"--summary" help:"request a summarizer key"`
	JSON          bool   `arg:"--json" help:"print the raw responses as JSON"`
}

type summarizeCmd struct {
	Query string `arg:"positional,required" help:"search query"`

	EntityInfo bool `arg:"--entity-info" help:"include entity information"`
	JSON       bool `arg:"--json" help:"print the response as JSON"`
}

type searchResult struct {
	Query    string                      `json:"query"`
	Response *brave.WebSearchApiResponse `json:"response"`
}

func (c *searchCmd) request(q string) brave.WebSearchRequest {
	req := brave.WebSearchRequest{
		Query:      q,
		Country:    c.Country,
		SafeSearch: brave.SafeSearch(c.SafeSearch),
		Freshness:  c.Freshness,
	}
	if c.Count > 0 {
		req.Count = brave.Int(c.Count)
	}
	if c.Offset > 0 {
		req.Offset = brave.Int(c.Offset)
	}
	if c.ExtraSnippets {
		req.ExtraSnippets = brave.Bool(true)
	}
	if c.Summary {
		req.Summary = brave.Bool(true)
	}
	return req
}

func (c *searchCmd) run(ctx context.Context, conf *config.Config) error {
	return brave.Open(func(client *brave.Client) error {
		results, err := c.search(ctx, client)
		if err != nil {
			return err
		}
		if c.JSON {
			return writeJSON(os.Stdout, results)
		}
		for _, r := range results {
			printResults(os.Stdout, r)
		}
		return nil
	}, clientOptions(conf)...)
}

// search runs every query on client. The client rate limit and pool bound the
// effective concurrency; results keep the order of the queries.
func (c *searchCmd) search(ctx context.Context, client *brave.Client) ([]searchResult, error) {
	results := make([]searchResult, len(c.Queries))
	g, ctx := errgroup.WithContext(ctx)
	for i, q := range c.Queries {
		g.Go(func() error {
			resp, err := client.WebSearch(ctx, c.request(q))
			if err != nil {
				return fmt.Errorf("search '%s': %w", q, err)
			}
			results[i] = searchResult{Query: q, Response: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *summarizeCmd) run(ctx context.Context, conf *config.Config) error {
	return brave.Open(func(client *brave.Client) error {
		resp, err := client.Summarize(ctx, brave.WebSearchRequest{Query: c.Query}, c.EntityInfo)
		if err != nil {
			return err
		}
		if c.JSON {
			return writeJSON(os.Stdout, resp)
		}
		if resp.Title != "" {
			fmt.Fprintln(os.Stdout, resp.Title)
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintln(os.Stdout, resp.Text())
		return nil
	}, clientOptions(conf)...)
}

func clientOptions(conf *config.Config) []brave.Option {
	return append(conf.Client.ClientOptions(), brave.WithLogger(slog.Default()))
}

func printResults(w io.Writer, r searchResult) {
	fmt.Fprintf(w, "# %s\n", r.Query)
	if r.Response.Web == nil || len(r.Response.Web.Results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for i, res := range r.Response.Web.Results {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, res.Title, res.URL)
		if res.Description != "" {
			fmt.Fprintf(w, "   %s\n", res.Description)
		}
	}
	if r.Response.Summarizer != nil && r.Response.Summarizer.Key != "" {
		fmt.Fprintf(w, "summarizer key: %s\n", r.Response.Summarizer.Key)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
