package main

import (
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/anisense/anisense/pkg/anilist"
	"github.com/anisense/anisense/pkg/config"
	"github.com/anisense/anisense/pkg/httpclient"
	"github.com/anisense/anisense/pkg/linkup"
	"github.com/anisense/anisense/pkg/session"
	"github.com/anisense/anisense/pkg/tags"
	"github.com/anisense/anisense/pkg/tool/mcptoolset"
)

// buildSession assembles the conversation session and its gateways from
// config. The returned AniList client is shared with the enrichment step.
func buildSession(cfg *config.Config) (*session.Session, *anilist.Client, error) {
	catalog, err := tags.Load(cfg.TagsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tag catalog: %w", err)
	}

	modelOpts := []openai.Option{
		openai.WithModel(cfg.Model.Name),
		openai.WithToken(cfg.Model.APIKey),
	}
	if cfg.Model.BaseURL != "" {
		modelOpts = append(modelOpts, openai.WithBaseURL(cfg.Model.BaseURL))
	}
	model, err := openai.New(modelOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	aniClient := anilist.NewClient(cfg.AniList.Endpoint,
		anilist.WithHTTPClient(httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: cfg.AniList.Timeout}),
		)),
	)

	searchClient := linkup.NewClient(cfg.Search.APIKey,
		linkup.WithBaseURL(cfg.Search.BaseURL),
		linkup.WithMaxResults(cfg.Search.MaxResults),
	)

	toolset, err := mcptoolset.New(mcptoolset.Config{
		Name:    "anilist",
		Command: cfg.MCP.Command,
		Args:    cfg.MCP.Args,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MCP toolset: %w", err)
	}

	sess, err := session.New(session.Config{
		Launcher: cfg.MCP.Command,
		Toolset:  toolset,
		Model:    model,
		Tags:     catalog,
		AniList:  aniClient,
		Search:   searchClient,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, aniClient, nil
}
